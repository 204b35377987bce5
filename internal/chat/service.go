package chat

import (
	"context"
	"fmt"

	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/internal/pipeline"
	"github.com/nhdandz/ResearchRover/internal/rag"
	"github.com/nhdandz/ResearchRover/internal/vector"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// ConversationStore is the slice of relational storage the chat
// router needs.
type ConversationStore interface {
	GetConversation(ctx context.Context, userID, convID string) (*models.Conversation, error)
	UpdateConversationModes(ctx context.Context, userID, convID, chatMode, contextMode string) error
	ReplaceConversationSources(ctx context.Context, convID string, sourceIDs []string) error
	ListConversationSources(ctx context.Context, convID string) ([]string, error)
}

// Service routes a question to the query path selected by the
// conversation's chat and context modes.
type Service struct {
	conversations ConversationStore
	ragPipeline   *rag.Pipeline
	fullContext   *rag.FullContext
	log           *logger.Logger
}

// NewService wires the chat router.
func NewService(conversations ConversationStore, ragPipeline *rag.Pipeline, fullContext *rag.FullContext) *Service {
	return &Service{
		conversations: conversations,
		ragPipeline:   ragPipeline,
		fullContext:   fullContext,
		log:           logger.New("chat", ""),
	}
}

// Ask answers a question within a conversation. Document-mode
// conversations search only the asker's documents (or stuff them
// whole in full-context mode); global conversations search the shared
// papers and repositories corpora.
func (s *Service) Ask(ctx context.Context, userID, conversationID, question string) (rag.Response, error) {
	conv, err := s.conversations.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return rag.Response{}, err
	}

	if conv.ChatMode == models.ChatModeDocuments {
		if conv.ContextMode == models.ContextModeFullContext {
			return s.fullContext.Query(ctx, userID, conversationID, question), nil
		}
		filters := map[string]interface{}{vector.FieldUserID: userID}
		return s.ragPipeline.Query(ctx, question, filters, []string{pipeline.CollectionUserDocs}), nil
	}

	collections := []string{pipeline.CollectionPapers, pipeline.CollectionRepositories}
	return s.ragPipeline.Query(ctx, question, nil, collections), nil
}

// Query runs a stateless RAG query against the shared corpora, outside
// any conversation.
func (s *Service) Query(ctx context.Context, question string, filters map[string]interface{}) rag.Response {
	collections := []string{pipeline.CollectionPapers, pipeline.CollectionRepositories}
	return s.ragPipeline.Query(ctx, question, filters, collections)
}

// SetSources replaces a conversation's attached source set wholesale.
func (s *Service) SetSources(ctx context.Context, userID, conversationID string, sourceIDs []string) error {
	if _, err := s.conversations.GetConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.conversations.ReplaceConversationSources(ctx, conversationID, sourceIDs)
}

// Sources lists a conversation's attached sources in position order.
func (s *Service) Sources(ctx context.Context, userID, conversationID string) ([]string, error) {
	if _, err := s.conversations.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.conversations.ListConversationSources(ctx, conversationID)
}

// SetContextMode switches a conversation between rag and full_context.
func (s *Service) SetContextMode(ctx context.Context, userID, conversationID, contextMode string) error {
	if contextMode != models.ContextModeRAG && contextMode != models.ContextModeFullContext {
		return fmt.Errorf("unknown context mode %q", contextMode)
	}
	conv, err := s.conversations.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	return s.conversations.UpdateConversationModes(ctx, userID, conversationID, conv.ChatMode, contextMode)
}
