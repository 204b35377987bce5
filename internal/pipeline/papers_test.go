package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/internal/vector"
)

func pdfServer(t *testing.T, body string, status int) (*httptest.Server, *int) {
	t.Helper()
	downloads := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &downloads
}

func TestEmbedPaper_Success(t *testing.T) {
	srv, _ := pdfServer(t, strings.Repeat("fake pdf bytes ", 20), http.StatusOK)
	f := newEmbedderFixture()
	f.extractor.text = "extracted paper text"
	pe := NewPaperEmbedder(f.embedder)

	res := pe.EmbedPaper(context.Background(), "user-1", Paper{
		ID:     "2401.12345",
		Title:  "Attention Is All You Need",
		URL:    "https://arxiv.org/abs/2401.12345",
		PDFURL: srv.URL + "/paper.pdf",
	})

	assert.Equal(t, models.EmbedStatusCompleted, res.Status)

	src, err := f.sources.FindSourceByNote(context.Background(), "user-1", "paper:2401.12345")
	require.NoError(t, err)
	assert.Equal(t, "Attention_Is_All_You_Need.pdf", src.Filename)

	points := f.vectors.upserts[CollectionPapers]
	require.NotEmpty(t, points)
	assert.Equal(t, models.SourceTypePaper, points[0].Payload[vector.FieldSourceType])
	assert.Equal(t, "Attention Is All You Need", points[0].Payload[vector.FieldTitle])
	assert.Equal(t, "https://arxiv.org/abs/2401.12345", points[0].Payload[vector.FieldURL])
}

func TestEmbedPaper_ReusesDownloadedSource(t *testing.T) {
	srv, downloads := pdfServer(t, strings.Repeat("fake pdf bytes ", 20), http.StatusOK)
	f := newEmbedderFixture()
	f.extractor.text = "extracted paper text"
	pe := NewPaperEmbedder(f.embedder)

	paper := Paper{ID: "p-1", Title: "Some Paper", PDFURL: srv.URL}
	first := pe.EmbedPaper(context.Background(), "user-1", paper)
	second := pe.EmbedPaper(context.Background(), "user-1", paper)

	assert.Equal(t, models.EmbedStatusCompleted, second.Status)
	assert.Equal(t, first.SourceID, second.SourceID)
	assert.Equal(t, 1, *downloads)
	assert.Equal(t, 1, f.model.batchCalls)
}

func TestEmbedPaper_RejectsTinyPDF(t *testing.T) {
	srv, _ := pdfServer(t, "err", http.StatusOK)
	f := newEmbedderFixture()
	pe := NewPaperEmbedder(f.embedder)

	res := pe.EmbedPaper(context.Background(), "user-1", Paper{ID: "p-1", Title: "T", PDFURL: srv.URL})

	assert.Equal(t, models.EmbedStatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "too small")
	assert.Empty(t, f.sources.items)
}

func TestEmbedPaper_DownloadErrorStatus(t *testing.T) {
	srv, _ := pdfServer(t, "not found", http.StatusNotFound)
	f := newEmbedderFixture()
	pe := NewPaperEmbedder(f.embedder)

	res := pe.EmbedPaper(context.Background(), "user-1", Paper{ID: "p-1", Title: "T", PDFURL: srv.URL})

	assert.Equal(t, models.EmbedStatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "404")
}

func TestEmbedPaper_MissingPDFURL(t *testing.T) {
	f := newEmbedderFixture()
	pe := NewPaperEmbedder(f.embedder)

	res := pe.EmbedPaper(context.Background(), "user-1", Paper{ID: "p-1", Title: "T"})

	assert.Equal(t, models.EmbedStatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "no PDF URL")
}

func TestEmbedPapers_ItemsAreIsolated(t *testing.T) {
	srv, _ := pdfServer(t, strings.Repeat("fake pdf bytes ", 20), http.StatusOK)
	f := newEmbedderFixture()
	f.extractor.text = "extracted paper text"
	pe := NewPaperEmbedder(f.embedder)

	results := pe.EmbedPapers(context.Background(), "user-1", []Paper{
		{ID: "good", Title: "Good", PDFURL: srv.URL},
		{ID: "bad", Title: "Bad"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, models.EmbedStatusCompleted, results[0].Status)
	assert.Equal(t, models.EmbedStatusFailed, results[1].Status)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Attention Is All You Need", "Attention_Is_All_You_Need"},
		{"a/b\\c:d", "a_b_c_d"},
		{"...", "paper"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in))
	}
}
