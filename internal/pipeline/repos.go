package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhdandz/ResearchRover/internal/extract"
	"github.com/nhdandz/ResearchRover/internal/ingest"
	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/internal/vector"
)

// RepoIngestor flattens a repository URL into embeddable chunks.
type RepoIngestor interface {
	Ingest(ctx context.Context, repoURL string) (*ingest.RepoContent, error)
	Chunk(repo *ingest.RepoContent) []ingest.Chunk
}

// RepoEmbedder ingests repository snapshots into the repositories
// collection. The flattened snapshot is also persisted as a SourceItem
// so the full-context path can read it back.
type RepoEmbedder struct {
	*Embedder
	ingestor RepoIngestor
}

// NewRepoEmbedder wires the repository ingestion flow.
func NewRepoEmbedder(e *Embedder, ingestor RepoIngestor) *RepoEmbedder {
	return &RepoEmbedder{Embedder: e, ingestor: ingestor}
}

// EmbedRepo flattens, chunks and embeds one repository. Repeated
// requests for the same repository reuse the persisted SourceItem, and
// a completed record short-circuits as a cache hit.
func (r *RepoEmbedder) EmbedRepo(ctx context.Context, userID, repoURL string) models.EmbedResult {
	repo, err := r.ingestor.Ingest(ctx, repoURL)
	if err != nil {
		return models.EmbedResult{
			Status:       models.EmbedStatusFailed,
			ErrorMessage: truncate(fmt.Sprintf("repository ingestion failed: %v", err), resultErrorLimit),
		}
	}

	src, err := r.findOrCreateRepoSource(ctx, userID, repo)
	if err != nil {
		return models.EmbedResult{
			Status:       models.EmbedStatusFailed,
			ErrorMessage: truncate(err.Error(), resultErrorLimit),
		}
	}

	if rec, err := r.records.GetEmbedding(ctx, src.ID); err == nil && rec.Status == models.EmbedStatusCompleted {
		return models.EmbedResult{
			SourceID:   src.ID,
			Status:     rec.Status,
			ChunkCount: rec.ChunkCount,
		}
	}

	rec := &models.EmbeddingRecord{
		SourceID:  src.ID,
		UserID:    userID,
		Status:    models.EmbedStatusProcessing,
		UpdatedAt: time.Now(),
	}
	if err := r.records.SaveEmbedding(ctx, rec); err != nil {
		return r.fail(ctx, rec, fmt.Errorf("failed to mark processing: %w", err))
	}

	chunks := r.ingestor.Chunk(repo)
	if len(chunks) == 0 {
		return r.fail(ctx, rec, models.ErrNoChunks)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := r.model.EmbedBatch(ctx, texts)
	if err != nil {
		return r.fail(ctx, rec, fmt.Errorf("batch embedding failed: %w", err))
	}
	if len(vectors) != len(chunks) {
		return r.fail(ctx, rec, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors)))
	}

	points := make([]vector.Point, len(chunks))
	for i, c := range chunks {
		points[i] = vector.Point{
			ID:     pointID(src.ID, c.Index),
			Vector: vectors[i],
			Payload: map[string]interface{}{
				vector.FieldUserID:     userID,
				vector.FieldDocumentID: src.ID,
				vector.FieldChunkIndex: c.Index,
				vector.FieldTitle:      repo.RepoName,
				vector.FieldContent:    c.Content,
				vector.FieldSourceType: models.SourceTypeGithubRepo,
				vector.FieldFilePath:   c.FilePath,
				vector.FieldURL:        repoURL,
			},
		}
	}
	if err := r.vectors.Upsert(ctx, CollectionRepositories, points); err != nil {
		return r.fail(ctx, rec, fmt.Errorf("vector upsert failed: %w", err))
	}

	return r.complete(ctx, rec, len(chunks))
}

// findOrCreateRepoSource reuses the SourceItem persisted for a
// repository, or persists the flattened snapshot as a new one.
func (r *RepoEmbedder) findOrCreateRepoSource(ctx context.Context, userID string, repo *ingest.RepoContent) (*models.SourceItem, error) {
	note := "repo:" + repo.RepoName
	if src, err := r.sources.FindSourceByNote(ctx, userID, note); err == nil {
		return src, nil
	}

	flattened := flattenRepo(repo)
	id := uuid.New().String()
	filename := strings.ReplaceAll(repo.RepoName, "/", "_") + ".txt"
	path, err := r.files.Save(ctx, userID, id, filename, []byte(flattened))
	if err != nil {
		return nil, fmt.Errorf("failed to store repository snapshot: %w", err)
	}

	src := &models.SourceItem{
		ID:               id,
		UserID:           userID,
		Filename:         filename,
		OriginalFilename: repo.RepoName,
		ContentType:      string(extract.TypeRepo),
		FileSize:         int64(len(flattened)),
		StoragePath:      path,
		Note:             note,
		CreatedAt:        time.Now(),
	}
	if err := r.sources.CreateSource(ctx, src); err != nil {
		return nil, fmt.Errorf("failed to persist repository source: %w", err)
	}
	return src, nil
}

// flattenRepo renders a snapshot as the plain text persisted to
// storage.
func flattenRepo(repo *ingest.RepoContent) string {
	var sb strings.Builder
	if repo.Summary != "" {
		sb.WriteString(repo.Summary)
		sb.WriteString("\n\n")
	}
	if repo.Tree != "" {
		sb.WriteString(repo.Tree)
		sb.WriteString("\n\n")
	}
	sb.WriteString(repo.Content)
	return sb.String()
}
