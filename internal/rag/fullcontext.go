package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhdandz/ResearchRover/internal/extract"
	"github.com/nhdandz/ResearchRover/internal/llm"
	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/internal/storage"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// FullContextCharLimit caps the joined document text stuffed into the
// prompt.
const FullContextCharLimit = 100_000

const fullContextPrompt = `You are a knowledgeable assistant. Answer the question based on the provided documents/code.

Rules:
1. Use information from the provided content to answer thoroughly
2. Reference specific files or sections when relevant
3. If the content doesn't contain the answer, say so
4. Be concise but thorough

Content:
%s

Question: %s

Answer:`

const noDocumentsAnswer = "No documents are attached to this conversation. " +
	"Please add documents via 'Manage Sources' first."

const truncationNotice = "\n\n*Note: Document content was truncated due to size limits. " +
	"Consider using RAG mode for large documents.*"

const modelUnavailableAnswer = "The language model is currently unavailable. Please try again later."

// FullContextStore is the slice of relational storage the full-context
// path needs.
type FullContextStore interface {
	ListConversationSources(ctx context.Context, convID string) ([]string, error)
	ListCompletedEmbeddings(ctx context.Context, userID string) ([]models.EmbeddingRecord, error)
	GetSource(ctx context.Context, userID, sourceID string) (*models.SourceItem, error)
}

// FullContext answers a question by stuffing whole documents into a
// single prompt instead of retrieving chunks. Document text is read
// from storage and re-extracted, bypassing the embedding cache.
type FullContext struct {
	store     FullContextStore
	files     storage.Service
	extractor extract.Extractor
	model     llm.LLM
	log       *logger.Logger
}

// NewFullContext wires the full-context query path.
func NewFullContext(store FullContextStore, files storage.Service, extractor extract.Extractor, model llm.LLM) *FullContext {
	return &FullContext{
		store:     store,
		files:     files,
		extractor: extractor,
		model:     model,
		log:       logger.New("fullcontext", ""),
	}
}

// Query answers a question against the conversation's attached
// documents. With no attachments it falls back to all of the user's
// embedded documents. Per-item read or extraction failures are
// collected and skipped, never fatal to the request.
func (f *FullContext) Query(ctx context.Context, userID, conversationID, question string) Response {
	sourceIDs := f.resolveSourceIDs(ctx, userID, conversationID)
	if len(sourceIDs) == 0 {
		return Response{Answer: noDocumentsAnswer, Sources: []Source{}, Confidence: 0}
	}

	var contextParts []string
	var sources []Source
	var itemErrors []string

	for _, id := range sourceIDs {
		src, err := f.store.GetSource(ctx, userID, id)
		if err != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("Document %s not found", id))
			continue
		}

		text, err := f.readDocumentText(ctx, src)
		if err != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("%s: %v", src.OriginalFilename, err))
			continue
		}

		contextParts = append(contextParts, fmt.Sprintf("## Document: %s\n%s", src.OriginalFilename, text))
		sources = append(sources, Source{
			ID:    src.ID,
			Type:  models.SourceTypeDocument,
			Title: src.OriginalFilename,
			Score: 1.0,
		})
	}

	if len(contextParts) == 0 {
		detail := "Unknown error"
		if len(itemErrors) > 0 {
			detail = "- " + strings.Join(itemErrors, "\n- ")
		}
		return Response{
			Answer:     fmt.Sprintf("Could not read any of the attached documents.\n\nErrors:\n%s", detail),
			Sources:    []Source{},
			Confidence: 0,
		}
	}

	fullContext := strings.Join(contextParts, "\n---\n")
	truncated := false
	if len(fullContext) > FullContextCharLimit {
		fullContext = fullContext[:FullContextCharLimit]
		truncated = true
	}

	prompt := fmt.Sprintf(fullContextPrompt, fullContext, question)
	answer, err := f.model.Generate(ctx, prompt, llm.Options{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		f.log.WithError(err).Error("full-context generation failed")
		answer = modelUnavailableAnswer
	}

	// Truncation is a caveat appended to the answer, not a confidence
	// signal.
	if truncated {
		answer += truncationNotice
	}

	return Response{Answer: answer, Sources: sources, Confidence: 1.0}
}

// resolveSourceIDs returns the conversation's attached sources, or
// every completed-embedded source of the user as a best-effort
// default.
func (f *FullContext) resolveSourceIDs(ctx context.Context, userID, conversationID string) []string {
	ids, err := f.store.ListConversationSources(ctx, conversationID)
	if err != nil {
		f.log.WithError(err).Error("failed to list conversation sources")
		return nil
	}
	if len(ids) > 0 {
		return ids
	}

	f.log.WithPayload(map[string]interface{}{
		"conversation_id": conversationID,
	}).Warn("no attached sources, falling back to all embedded documents")

	recs, err := f.store.ListCompletedEmbeddings(ctx, userID)
	if err != nil {
		f.log.WithError(err).Error("failed to list embedded documents")
		return nil
	}
	fallback := make([]string, 0, len(recs))
	for _, rec := range recs {
		fallback = append(fallback, rec.SourceID)
	}
	return fallback
}

// readDocumentText reads and re-extracts one document's text.
func (f *FullContext) readDocumentText(ctx context.Context, src *models.SourceItem) (string, error) {
	data, err := f.files.Read(ctx, src.StoragePath)
	if err != nil {
		return "", err
	}

	contentType, err := extract.ResolveContentType(src.ContentType, src.OriginalFilename, data)
	if err != nil {
		return "", err
	}
	text, err := f.extractor.Extract(data, contentType)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("extracted text is empty")
	}
	return text, nil
}
