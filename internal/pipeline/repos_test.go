package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhdandz/ResearchRover/internal/ingest"
	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/internal/vector"
)

type fakeIngestor struct {
	repo        *ingest.RepoContent
	chunks      []ingest.Chunk
	ingestErr   error
	ingestCalls int
}

func (f *fakeIngestor) Ingest(_ context.Context, repoURL string) (*ingest.RepoContent, error) {
	f.ingestCalls++
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	return f.repo, nil
}

func (f *fakeIngestor) Chunk(repo *ingest.RepoContent) []ingest.Chunk {
	return f.chunks
}

func testRepoIngestor() *fakeIngestor {
	return &fakeIngestor{
		repo: &ingest.RepoContent{
			RepoName: "acme/widget",
			Summary:  "A widget library.",
			Tree:     "widget.go",
			Content:  "package widget",
		},
		chunks: []ingest.Chunk{
			{Content: "# Repository Overview: acme/widget", FilePath: ingest.OverviewFilePath, Index: 0},
			{Content: "# File: widget.go\n\npackage widget", FilePath: "widget.go", Index: 1},
		},
	}
}

func TestEmbedRepo_Success(t *testing.T) {
	f := newEmbedderFixture()
	ingestor := testRepoIngestor()
	re := NewRepoEmbedder(f.embedder, ingestor)

	res := re.EmbedRepo(context.Background(), "user-1", "https://github.com/acme/widget")

	assert.Equal(t, models.EmbedStatusCompleted, res.Status)
	assert.Equal(t, 2, res.ChunkCount)

	src, err := f.sources.FindSourceByNote(context.Background(), "user-1", "repo:acme/widget")
	require.NoError(t, err)
	assert.Equal(t, "acme_widget.txt", src.Filename)
	assert.Equal(t, "acme/widget", src.OriginalFilename)

	// The flattened snapshot is persisted for the full-context path.
	snapshot, err := f.files.Read(context.Background(), src.StoragePath)
	require.NoError(t, err)
	assert.Contains(t, string(snapshot), "A widget library.")
	assert.Contains(t, string(snapshot), "package widget")

	points := f.vectors.upserts[CollectionRepositories]
	require.Len(t, points, 2)
	assert.Equal(t, ingest.OverviewFilePath, points[0].Payload[vector.FieldFilePath])
	assert.Equal(t, "widget.go", points[1].Payload[vector.FieldFilePath])
	assert.Equal(t, models.SourceTypeGithubRepo, points[0].Payload[vector.FieldSourceType])
	assert.Equal(t, "https://github.com/acme/widget", points[0].Payload[vector.FieldURL])
}

func TestEmbedRepo_SecondRunIsCacheHit(t *testing.T) {
	f := newEmbedderFixture()
	ingestor := testRepoIngestor()
	re := NewRepoEmbedder(f.embedder, ingestor)

	first := re.EmbedRepo(context.Background(), "user-1", "https://github.com/acme/widget")
	second := re.EmbedRepo(context.Background(), "user-1", "https://github.com/acme/widget")

	assert.Equal(t, models.EmbedStatusCompleted, second.Status)
	assert.Equal(t, first.SourceID, second.SourceID)
	assert.Equal(t, 1, f.model.batchCalls)
	// Only one SourceItem exists for the repository.
	assert.Len(t, f.sources.items, 1)
}

func TestEmbedRepo_IngestFailure(t *testing.T) {
	f := newEmbedderFixture()
	ingestor := &fakeIngestor{ingestErr: errors.New("flattening service down")}
	re := NewRepoEmbedder(f.embedder, ingestor)

	res := re.EmbedRepo(context.Background(), "user-1", "https://github.com/acme/widget")

	assert.Equal(t, models.EmbedStatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "flattening service down")
	assert.Empty(t, f.sources.items)
}

func TestEmbedRepo_NoChunksFails(t *testing.T) {
	f := newEmbedderFixture()
	ingestor := testRepoIngestor()
	ingestor.chunks = nil
	re := NewRepoEmbedder(f.embedder, ingestor)

	res := re.EmbedRepo(context.Background(), "user-1", "https://github.com/acme/widget")

	assert.Equal(t, models.EmbedStatusFailed, res.Status)
	rec := f.records.records[res.SourceID]
	require.NotNil(t, rec)
	assert.Equal(t, models.EmbedStatusFailed, rec.Status)
}
