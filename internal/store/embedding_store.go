package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nhdandz/ResearchRover/internal/models"
)

// GetEmbedding returns the embedding record for a source item.
func (s *Store) GetEmbedding(ctx context.Context, sourceID string) (*models.EmbeddingRecord, error) {
	var rec models.EmbeddingRecord
	err := s.DB.WithContext(ctx).First(&rec, "source_id = ?", sourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveEmbedding inserts or fully replaces the embedding record for a
// source item. At most one record exists per source.
func (s *Store) SaveEmbedding(ctx context.Context, rec *models.EmbeddingRecord) error {
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

// DeleteEmbedding removes the embedding record for a source item.
func (s *Store) DeleteEmbedding(ctx context.Context, sourceID string) error {
	return s.DB.WithContext(ctx).
		Delete(&models.EmbeddingRecord{}, "source_id = ?", sourceID).Error
}

// ListCompletedEmbeddings returns records with completed status for the
// given user. The full-context path uses this to find every document
// eligible for stuffing.
func (s *Store) ListCompletedEmbeddings(ctx context.Context, userID string) ([]models.EmbeddingRecord, error) {
	var recs []models.EmbeddingRecord
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.EmbedStatusCompleted).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
