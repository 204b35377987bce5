package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nhdandz/ResearchRover/internal/models"
)

// Store wraps the relational database and exposes typed accessors for
// source items, embedding records and conversations.
type Store struct {
	DB *gorm.DB
}

// NewStore creates a Store and migrates the schema.
func NewStore(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&models.SourceItem{},
		&models.EmbeddingRecord{},
		&models.Conversation{},
		&models.ConversationSource{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{DB: db}, nil
}
