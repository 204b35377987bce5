package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nhdandz/ResearchRover/internal/models"
)

// CreateConversation persists a new conversation.
func (s *Store) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	return s.DB.WithContext(ctx).Create(conv).Error
}

// GetConversation looks up a conversation owned by the given user.
func (s *Store) GetConversation(ctx context.Context, userID, convID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", convID, userID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// UpdateConversationModes sets the chat and context modes.
func (s *Store) UpdateConversationModes(ctx context.Context, userID, convID, chatMode, contextMode string) error {
	return s.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", convID, userID).
		Updates(map[string]interface{}{"chat_mode": chatMode, "context_mode": contextMode}).Error
}

// ReplaceConversationSources swaps the attached source set wholesale.
// Order of sourceIDs is preserved via the position column.
func (s *Store) ReplaceConversationSources(ctx context.Context, convID string, sourceIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", convID).Delete(&models.ConversationSource{}).Error; err != nil {
			return err
		}
		for i, id := range sourceIDs {
			link := models.ConversationSource{ConversationID: convID, SourceID: id, Position: i}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListConversationSources returns the attached source IDs in position
// order.
func (s *Store) ListConversationSources(ctx context.Context, convID string) ([]string, error) {
	var links []models.ConversationSource
	err := s.DB.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("position ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.SourceID)
	}
	return ids, nil
}
