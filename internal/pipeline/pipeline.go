package pipeline

import (
	"context"

	"github.com/nhdandz/ResearchRover/internal/extract"
	"github.com/nhdandz/ResearchRover/internal/models"
)

// Vector index collections. User documents are tenant-filtered at
// query time; papers and repositories are shared.
const (
	CollectionUserDocs     = "user_docs"
	CollectionPapers       = "papers"
	CollectionRepositories = "repositories"
)

// SourceStore is the slice of relational storage the pipeline needs
// for source items.
type SourceStore interface {
	GetSource(ctx context.Context, userID, sourceID string) (*models.SourceItem, error)
	CreateSource(ctx context.Context, item *models.SourceItem) error
	FindSourceByNote(ctx context.Context, userID, note string) (*models.SourceItem, error)
	DeleteSource(ctx context.Context, userID, sourceID string) error
}

// EmbeddingStore is the slice of relational storage the pipeline needs
// for embedding records.
type EmbeddingStore interface {
	GetEmbedding(ctx context.Context, sourceID string) (*models.EmbeddingRecord, error)
	SaveEmbedding(ctx context.Context, rec *models.EmbeddingRecord) error
	DeleteEmbedding(ctx context.Context, sourceID string) error
}

// Chunker splits extracted text for embedding.
type Chunker func(text string, chunkSize, overlap int) []string

// DefaultChunker is the sentence-aware document chunker.
var DefaultChunker Chunker = extract.ChunkText
