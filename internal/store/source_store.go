package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nhdandz/ResearchRover/internal/models"
)

// CreateSource persists a new source item.
func (s *Store) CreateSource(ctx context.Context, item *models.SourceItem) error {
	return s.DB.WithContext(ctx).Create(item).Error
}

// GetSource looks up a source item owned by the given user.
func (s *Store) GetSource(ctx context.Context, userID, sourceID string) (*models.SourceItem, error) {
	var item models.SourceItem
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", sourceID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindSourceByNote looks up a source item by its origin note, e.g.
// "paper:<id>" or "repo:<id>". Used to reuse downloaded content on
// repeated embed requests.
func (s *Store) FindSourceByNote(ctx context.Context, userID, note string) (*models.SourceItem, error) {
	var item models.SourceItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND note = ?", userID, note).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListSources returns all source items owned by the given user, newest
// first.
func (s *Store) ListSources(ctx context.Context, userID string) ([]models.SourceItem, error) {
	var items []models.SourceItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteSource removes a source item row.
func (s *Store) DeleteSource(ctx context.Context, userID, sourceID string) error {
	return s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", sourceID, userID).
		Delete(&models.SourceItem{}).Error
}
