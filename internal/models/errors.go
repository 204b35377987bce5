package models

import "errors"

// Error taxonomy for the ingestion and query paths. Ingestion errors
// are recorded on the EmbeddingRecord and surfaced as per-item
// statuses; query-path errors are downgraded to degraded answers.
var (
	// ErrUnsupportedContentType is returned when extraction refuses an
	// unknown MIME type or extension.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrEmptyExtraction is returned when a file yields no text after
	// trimming.
	ErrEmptyExtraction = errors.New("no text could be extracted")

	// ErrNoChunks is returned when chunking produced no chunks.
	ErrNoChunks = errors.New("text chunking produced no chunks")

	// ErrGenerationUnavailable marks a failed language model call.
	ErrGenerationUnavailable = errors.New("language model unavailable")

	// ErrNotFound is returned by stores for missing rows.
	ErrNotFound = errors.New("not found")
)
