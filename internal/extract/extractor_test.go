package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhdandz/ResearchRover/internal/models"
)

func TestResolveContentType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		data     []byte
		want     ContentType
		wantErr  bool
	}{
		{
			name:     "declared type wins",
			declared: "application/pdf",
			filename: "notes.txt",
			want:     TypePDF,
		},
		{
			name:     "unknown declared type falls back to extension",
			declared: "application/octet-stream",
			filename: "report.docx",
			want:     TypeDOCX,
		},
		{
			name:     "extension is case-insensitive",
			filename: "README.MD",
			want:     TypeMarkdown,
		},
		{
			name:     "sniffing catches undeclared html",
			filename: "page",
			data:     []byte("<!DOCTYPE html><html><body>hi</body></html>"),
			want:     TypeHTML,
		},
		{
			name:     "unsupported input is rejected",
			declared: "application/zip",
			filename: "archive.zip",
			data:     []byte{0x50, 0x4b, 0x03, 0x04},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveContentType(tt.declared, tt.filename, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrUnsupportedContentType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	svc := NewService()
	_, err := svc.Extract([]byte("data"), ContentType("application/zip"))
	assert.ErrorIs(t, err, models.ErrUnsupportedContentType)
}

func TestExtract_PlainTextAndRepo(t *testing.T) {
	svc := NewService()

	text, err := svc.Extract([]byte("plain content"), TypePlain)
	require.NoError(t, err)
	assert.Equal(t, "plain content", text)

	text, err = svc.Extract([]byte("# Repository Overview"), TypeRepo)
	require.NoError(t, err)
	assert.Equal(t, "# Repository Overview", text)
}

func TestExtract_InvalidUTF8IsReplaced(t *testing.T) {
	svc := NewService()
	text, err := svc.Extract([]byte{'o', 'k', 0xff, '!'}, TypePlain)
	require.NoError(t, err)
	assert.Equal(t, "ok�!", text)
}

func TestExtractCSV_HeadersAndRows(t *testing.T) {
	csvData := "name,score\nalice,10\nbob,20\n"
	svc := NewService()

	text, err := svc.Extract([]byte(csvData), TypeCSV)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Headers: name | score", lines[0])
	assert.Equal(t, "alice | 10", lines[1])
	assert.Equal(t, "bob | 20", lines[2])
}

func TestExtractCSV_RaggedRows(t *testing.T) {
	csvData := "a,b,c\n1,2\n3,4,5,6\n"
	text, err := extractCSV([]byte(csvData))
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1 | 2", lines[1])
	assert.Equal(t, "3 | 4 | 5 | 6", lines[2])
}

func TestExtractCSV_TruncatesAt500Rows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id,value\n")
	for i := 0; i < 600; i++ {
		fmt.Fprintf(&sb, "%d,v%d\n", i, i)
	}

	text, err := extractCSV([]byte(sb.String()))
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	// Header line, 500 data rows, one truncation marker.
	require.Len(t, lines, 502)
	assert.Equal(t, "Headers: id | value", lines[0])
	assert.Equal(t, "499 | v499", lines[500])
	assert.Equal(t, "... (truncated, 500+ rows)", lines[501])
}

func TestExtractCSV_NoTruncationBelowCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id\n")
	for i := 0; i < 499; i++ {
		fmt.Fprintf(&sb, "%d\n", i)
	}

	text, err := extractCSV([]byte(sb.String()))
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 500)
	assert.NotContains(t, lines[len(lines)-1], "truncated")
}

func TestJoinPages_SkipsNothingItself(t *testing.T) {
	joined := joinPages([]string{"page one", "page two"})
	assert.Equal(t, "page one\n\npage two", joined)
}
