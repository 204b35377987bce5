package models

import "time"

// Embedding record statuses. Transitions within one attempt are
// monotonic (pending/retry -> processing -> completed|failed); a
// re-embed request resets the record to processing.
const (
	EmbedStatusPending    = "pending"
	EmbedStatusProcessing = "processing"
	EmbedStatusCompleted  = "completed"
	EmbedStatusFailed     = "failed"
)

// Conversation chat modes.
const (
	ChatModeGlobal    = "global"
	ChatModeDocuments = "documents"
)

// Conversation context modes.
const (
	ContextModeRAG         = "rag"
	ContextModeFullContext = "full_context"
)

// Source kinds carried in vector point payloads.
const (
	SourceTypeUserDocument = "user_document"
	SourceTypePaper        = "paper"
	SourceTypeGithubRepo   = "github_repo"
	SourceTypeDocument     = "document"
)

// SourceItem is an ingestable content unit: an uploaded file, a
// downloaded paper PDF, or an ingested repository snapshot. Content is
// immutable once created; replacing content requires a new SourceItem.
type SourceItem struct {
	ID               string `gorm:"primaryKey;size:36"`
	UserID           string `gorm:"size:36;index;not null"`
	Filename         string `gorm:"size:500;not null"`
	OriginalFilename string `gorm:"size:500;not null"`
	ContentType      string `gorm:"size:100;not null"`
	FileSize         int64
	StoragePath      string `gorm:"size:1000;not null"`
	// Note links a SourceItem back to its origin, e.g. "paper:<id>" or
	// "repo:<id>". Empty for plain uploads.
	Note      string `gorm:"size:200;index"`
	CreatedAt time.Time
}

// EmbeddingRecord tracks the embedding state of one SourceItem. At
// most one record exists per SourceItem.
type EmbeddingRecord struct {
	SourceID     string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"size:36;index;not null"`
	Status       string `gorm:"size:20;not null"`
	ChunkCount   int
	ErrorMessage string `gorm:"size:500"`
	UpdatedAt    time.Time
}

// Conversation carries the per-conversation routing state: the chat
// mode (global vs. per-document-set) and the context mode (rag vs.
// full_context).
type Conversation struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"size:36;index;not null"`
	Title       string `gorm:"size:500"`
	ChatMode    string `gorm:"size:20;not null;default:global"`
	ContextMode string `gorm:"size:20;not null;default:rag"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ConversationSource links a conversation to an attached SourceItem.
// The attached set is replaced wholesale, never patched incrementally.
type ConversationSource struct {
	ConversationID string `gorm:"primaryKey;size:36"`
	SourceID       string `gorm:"primaryKey;size:36"`
	Position       int
}

// EmbedResult is the per-item outcome of an embedding request.
type EmbedResult struct {
	SourceID     string `json:"source_id"`
	Status       string `json:"status"`
	ChunkCount   int    `json:"chunk_count"`
	ErrorMessage string `json:"error_message,omitempty"`
}
