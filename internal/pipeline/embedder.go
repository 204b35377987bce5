package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhdandz/ResearchRover/internal/embedding"
	"github.com/nhdandz/ResearchRover/internal/extract"
	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/internal/storage"
	"github.com/nhdandz/ResearchRover/internal/vector"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// Error message size caps: the stored record keeps more detail than
// what is surfaced to the caller.
const (
	recordErrorLimit = 500
	resultErrorLimit = 200
)

// Embedder runs the ingestion pipeline for source items: extraction,
// chunking, batch embedding and vector-index upsert, tracked through
// the per-source EmbeddingRecord state machine.
type Embedder struct {
	sources   SourceStore
	records   EmbeddingStore
	files     storage.Service
	extractor extract.Extractor
	model     embedding.Embedding
	vectors   vector.Store
	chunker   Chunker
	log       *logger.Logger
}

// NewEmbedder wires the ingestion pipeline.
func NewEmbedder(
	sources SourceStore,
	records EmbeddingStore,
	files storage.Service,
	extractor extract.Extractor,
	model embedding.Embedding,
	vectors vector.Store,
) *Embedder {
	return &Embedder{
		sources:   sources,
		records:   records,
		files:     files,
		extractor: extractor,
		model:     model,
		vectors:   vectors,
		chunker:   DefaultChunker,
		log:       logger.New("embedder", ""),
	}
}

// embedTarget selects where and how one source's chunks are indexed.
type embedTarget struct {
	collection string
	sourceType string
	title      string
	url        string
}

// EmbedSources embeds a batch of source items. Items are processed
// independently: one item's failure is recorded on its result and
// never aborts its siblings.
func (e *Embedder) EmbedSources(ctx context.Context, userID string, sourceIDs []string) []models.EmbedResult {
	results := make([]models.EmbedResult, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		results = append(results, e.EmbedSource(ctx, userID, id))
	}
	return results
}

// EmbedSource embeds one uploaded source item into the user documents
// collection.
func (e *Embedder) EmbedSource(ctx context.Context, userID, sourceID string) models.EmbedResult {
	src, err := e.sources.GetSource(ctx, userID, sourceID)
	if err != nil {
		return models.EmbedResult{
			SourceID:     sourceID,
			Status:       models.EmbedStatusFailed,
			ErrorMessage: truncate(fmt.Sprintf("source not found: %v", err), resultErrorLimit),
		}
	}
	return e.runPipeline(ctx, userID, src, embedTarget{
		collection: CollectionUserDocs,
		sourceType: models.SourceTypeUserDocument,
		title:      src.OriginalFilename,
	})
}

// runPipeline executes the embedding state machine for one source. A
// record already in completed status is returned unchanged (cache
// hit); otherwise the record is reset to processing and extraction,
// chunking, batch embedding and upsert run in order. Any stage failure
// leaves the record in failed status with a truncated error message.
func (e *Embedder) runPipeline(ctx context.Context, userID string, src *models.SourceItem, target embedTarget) models.EmbedResult {
	// 1. Cache hit: completed records are never re-embedded.
	if rec, err := e.records.GetEmbedding(ctx, src.ID); err == nil && rec.Status == models.EmbedStatusCompleted {
		return models.EmbedResult{
			SourceID:   src.ID,
			Status:     rec.Status,
			ChunkCount: rec.ChunkCount,
		}
	}

	// 2. Create-or-reset the record to processing, clearing any prior
	// error.
	rec := &models.EmbeddingRecord{
		SourceID:  src.ID,
		UserID:    userID,
		Status:    models.EmbedStatusProcessing,
		UpdatedAt: time.Now(),
	}
	if err := e.records.SaveEmbedding(ctx, rec); err != nil {
		return e.fail(ctx, rec, fmt.Errorf("failed to mark processing: %w", err))
	}

	// 3. Read the stored content.
	data, err := e.files.Read(ctx, src.StoragePath)
	if err != nil {
		return e.fail(ctx, rec, fmt.Errorf("failed to read content: %w", err))
	}

	// 4. Extract text.
	contentType, err := extract.ResolveContentType(src.ContentType, src.OriginalFilename, data)
	if err != nil {
		return e.fail(ctx, rec, err)
	}
	text, err := e.extractor.Extract(data, contentType)
	if err != nil {
		return e.fail(ctx, rec, err)
	}
	if strings.TrimSpace(text) == "" {
		return e.fail(ctx, rec, models.ErrEmptyExtraction)
	}

	// 5. Chunk.
	chunks := e.chunker(text, extract.DefaultChunkSize, extract.DefaultOverlap)
	if len(chunks) == 0 {
		return e.fail(ctx, rec, models.ErrNoChunks)
	}

	// 6. Batch embed.
	vectors, err := e.model.EmbedBatch(ctx, chunks)
	if err != nil {
		return e.fail(ctx, rec, fmt.Errorf("batch embedding failed: %w", err))
	}
	if len(vectors) != len(chunks) {
		return e.fail(ctx, rec, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors)))
	}

	// 7. Upsert. Point IDs derive from (source, ordinal), so a re-embed
	// overwrites the same points instead of duplicating them.
	points := make([]vector.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vector.Point{
			ID:     pointID(src.ID, i),
			Vector: vectors[i],
			Payload: map[string]interface{}{
				vector.FieldUserID:     userID,
				vector.FieldDocumentID: src.ID,
				vector.FieldChunkIndex: i,
				vector.FieldTitle:      target.title,
				vector.FieldContent:    chunk,
				vector.FieldSourceType: target.sourceType,
				vector.FieldURL:        target.url,
			},
		}
	}
	if err := e.vectors.Upsert(ctx, target.collection, points); err != nil {
		return e.fail(ctx, rec, fmt.Errorf("vector upsert failed: %w", err))
	}

	// 8. Completed.
	return e.complete(ctx, rec, len(chunks))
}

// EmbedStatus returns the embedding status for a source item. A source
// without a record is pending.
func (e *Embedder) EmbedStatus(ctx context.Context, sourceID string) (models.EmbedResult, error) {
	rec, err := e.records.GetEmbedding(ctx, sourceID)
	if errors.Is(err, models.ErrNotFound) {
		return models.EmbedResult{SourceID: sourceID, Status: models.EmbedStatusPending}, nil
	}
	if err != nil {
		return models.EmbedResult{}, err
	}
	return models.EmbedResult{
		SourceID:     rec.SourceID,
		Status:       rec.Status,
		ChunkCount:   rec.ChunkCount,
		ErrorMessage: rec.ErrorMessage,
	}, nil
}

// DeleteSource removes a source item, its embedding record, its stored
// content and its vector points. Point IDs are regenerated from
// chunk_count, so the vector index is never read. Vector and storage
// cleanup failures are logged and swallowed; the relational rows are
// always removed.
func (e *Embedder) DeleteSource(ctx context.Context, userID, sourceID string) error {
	src, err := e.sources.GetSource(ctx, userID, sourceID)
	if err != nil {
		return err
	}

	if rec, err := e.records.GetEmbedding(ctx, sourceID); err == nil && rec.ChunkCount > 0 {
		ids := make([]string, rec.ChunkCount)
		for i := range ids {
			ids[i] = pointID(sourceID, i)
		}
		if err := e.vectors.Delete(ctx, collectionForSource(src), ids); err != nil {
			e.log.WithError(err).WithPayload(map[string]interface{}{
				"source_id": sourceID,
			}).Warn("vector cleanup failed")
		}
	}

	if err := e.records.DeleteEmbedding(ctx, sourceID); err != nil {
		return fmt.Errorf("failed to delete embedding record: %w", err)
	}
	if err := e.files.Delete(ctx, userID, sourceID); err != nil {
		e.log.WithError(err).WithPayload(map[string]interface{}{
			"source_id": sourceID,
		}).Warn("storage cleanup failed")
	}
	return e.sources.DeleteSource(ctx, userID, sourceID)
}

// complete marks the record completed and builds the result.
func (e *Embedder) complete(ctx context.Context, rec *models.EmbeddingRecord, chunkCount int) models.EmbedResult {
	rec.Status = models.EmbedStatusCompleted
	rec.ChunkCount = chunkCount
	rec.ErrorMessage = ""
	rec.UpdatedAt = time.Now()
	if err := e.records.SaveEmbedding(ctx, rec); err != nil {
		return e.fail(ctx, rec, fmt.Errorf("failed to mark completed: %w", err))
	}

	e.log.WithPayload(map[string]interface{}{
		"source_id": rec.SourceID,
		"chunks":    chunkCount,
	}).Info("source embedded")

	return models.EmbedResult{
		SourceID:   rec.SourceID,
		Status:     models.EmbedStatusCompleted,
		ChunkCount: chunkCount,
	}
}

// fail records a failed attempt and builds the caller-facing result.
func (e *Embedder) fail(ctx context.Context, rec *models.EmbeddingRecord, cause error) models.EmbedResult {
	rec.Status = models.EmbedStatusFailed
	rec.ChunkCount = 0
	rec.ErrorMessage = truncate(cause.Error(), recordErrorLimit)
	rec.UpdatedAt = time.Now()
	if err := e.records.SaveEmbedding(ctx, rec); err != nil {
		e.log.WithError(err).Error("failed to record embedding failure")
	}

	e.log.WithError(cause).WithPayload(map[string]interface{}{
		"source_id": rec.SourceID,
	}).Error("embedding failed")

	return models.EmbedResult{
		SourceID:     rec.SourceID,
		Status:       models.EmbedStatusFailed,
		ErrorMessage: truncate(cause.Error(), resultErrorLimit),
	}
}

// pointID derives the deterministic vector point ID for one chunk of
// one source.
func pointID(sourceID string, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s:%d", sourceID, ordinal))).String()
}

// collectionForSource maps a source item to the collection its chunks
// live in, based on the origin note.
func collectionForSource(src *models.SourceItem) string {
	switch {
	case strings.HasPrefix(src.Note, "paper:"):
		return CollectionPapers
	case strings.HasPrefix(src.Note, "repo:"):
		return CollectionRepositories
	default:
		return CollectionUserDocs
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
