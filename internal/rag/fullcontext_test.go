package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhdandz/ResearchRover/internal/extract"
	"github.com/nhdandz/ResearchRover/internal/llm"
	"github.com/nhdandz/ResearchRover/internal/models"
)

type fakeFullContextStore struct {
	attached  map[string][]string
	completed []models.EmbeddingRecord
	sources   map[string]*models.SourceItem
}

func (s *fakeFullContextStore) ListConversationSources(_ context.Context, convID string) ([]string, error) {
	return s.attached[convID], nil
}

func (s *fakeFullContextStore) ListCompletedEmbeddings(_ context.Context, userID string) ([]models.EmbeddingRecord, error) {
	return s.completed, nil
}

func (s *fakeFullContextStore) GetSource(_ context.Context, userID, sourceID string) (*models.SourceItem, error) {
	src, ok := s.sources[sourceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return src, nil
}

type fakeFiles struct {
	objects map[string][]byte
}

func (f *fakeFiles) Save(_ context.Context, owner, id, filename string, data []byte) (string, error) {
	path := fmt.Sprintf("%s/%s/%s", owner, id, filename)
	f.objects[path] = data
	return path, nil
}

func (f *fakeFiles) Read(_ context.Context, path string) ([]byte, error) {
	data, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %q not found", path)
	}
	return data, nil
}

func (f *fakeFiles) Delete(_ context.Context, owner, id string) error { return nil }

type fakeTextExtractor struct{}

func (fakeTextExtractor) Extract(data []byte, contentType extract.ContentType) (string, error) {
	return string(data), nil
}

type fakeLLM struct {
	answer      string
	err         error
	lastPrompt  string
	generations int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts llm.Options) (string, error) {
	f.generations++
	f.lastPrompt = prompt
	return f.answer, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, opts llm.Options) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

type fullContextFixture struct {
	fc    *FullContext
	store *fakeFullContextStore
	files *fakeFiles
	model *fakeLLM
}

func newFullContextFixture() *fullContextFixture {
	f := &fullContextFixture{
		store: &fakeFullContextStore{
			attached: map[string][]string{},
			sources:  map[string]*models.SourceItem{},
		},
		files: &fakeFiles{objects: map[string][]byte{}},
		model: &fakeLLM{answer: "full context answer"},
	}
	f.fc = NewFullContext(f.store, f.files, fakeTextExtractor{}, f.model)
	return f
}

func (f *fullContextFixture) addDocument(id, filename, content string) {
	path := "user-1/" + id + "/" + filename
	f.store.sources[id] = &models.SourceItem{
		ID:               id,
		UserID:           "user-1",
		Filename:         filename,
		OriginalFilename: filename,
		ContentType:      "text/plain",
		StoragePath:      path,
	}
	f.files.objects[path] = []byte(content)
}

func TestFullContextQuery_Success(t *testing.T) {
	f := newFullContextFixture()
	f.addDocument("doc-1", "a.txt", "alpha content")
	f.addDocument("doc-2", "b.txt", "beta content")
	f.store.attached["conv-1"] = []string{"doc-1", "doc-2"}

	resp := f.fc.Query(context.Background(), "user-1", "conv-1", "what is alpha?")

	assert.Equal(t, "full context answer", resp.Answer)
	assert.Equal(t, 1.0, resp.Confidence)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "a.txt", resp.Sources[0].Title)
	assert.Equal(t, models.SourceTypeDocument, resp.Sources[0].Type)

	assert.Contains(t, f.model.lastPrompt, "## Document: a.txt\nalpha content")
	assert.Contains(t, f.model.lastPrompt, "\n---\n## Document: b.txt\nbeta content")
	assert.Contains(t, f.model.lastPrompt, "what is alpha?")
}

func TestFullContextQuery_NoDocuments(t *testing.T) {
	f := newFullContextFixture()

	resp := f.fc.Query(context.Background(), "user-1", "conv-1", "question")

	assert.Equal(t, noDocumentsAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, resp.Confidence)
	assert.Zero(t, f.model.generations)
}

func TestFullContextQuery_FallsBackToEmbeddedDocuments(t *testing.T) {
	f := newFullContextFixture()
	f.addDocument("doc-1", "a.txt", "alpha content")
	f.store.completed = []models.EmbeddingRecord{{SourceID: "doc-1", Status: models.EmbedStatusCompleted}}

	resp := f.fc.Query(context.Background(), "user-1", "conv-1", "question")

	assert.Equal(t, "full context answer", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "doc-1", resp.Sources[0].ID)
}

func TestFullContextQuery_TruncatesOversizeContext(t *testing.T) {
	f := newFullContextFixture()
	f.addDocument("doc-1", "big.txt", strings.Repeat("x", FullContextCharLimit+5000))
	f.store.attached["conv-1"] = []string{"doc-1"}

	resp := f.fc.Query(context.Background(), "user-1", "conv-1", "question")

	assert.True(t, strings.HasSuffix(resp.Answer, truncationNotice))
	// Truncation does not lower confidence.
	assert.Equal(t, 1.0, resp.Confidence)
	assert.LessOrEqual(t, len(f.model.lastPrompt), FullContextCharLimit+len(fullContextPrompt)+100)
}

func TestFullContextQuery_GenerationFailure(t *testing.T) {
	f := newFullContextFixture()
	f.addDocument("doc-1", "a.txt", "alpha content")
	f.store.attached["conv-1"] = []string{"doc-1"}
	f.model.err = errors.New("model down")

	resp := f.fc.Query(context.Background(), "user-1", "conv-1", "question")

	assert.Equal(t, modelUnavailableAnswer, resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, 1.0, resp.Confidence)
}

func TestFullContextQuery_PerItemErrorsAreItemized(t *testing.T) {
	f := newFullContextFixture()
	f.store.attached["conv-1"] = []string{"missing-1", "missing-2"}

	resp := f.fc.Query(context.Background(), "user-1", "conv-1", "question")

	assert.Contains(t, resp.Answer, "Could not read any of the attached documents.")
	assert.Contains(t, resp.Answer, "- Document missing-1 not found")
	assert.Contains(t, resp.Answer, "- Document missing-2 not found")
	assert.Zero(t, resp.Confidence)
	assert.Zero(t, f.model.generations)
}

func TestFullContextQuery_SkipsUnreadableItems(t *testing.T) {
	f := newFullContextFixture()
	f.addDocument("good", "good.txt", "readable content")
	// Source row exists but the stored object is gone.
	f.store.sources["broken"] = &models.SourceItem{
		ID:               "broken",
		UserID:           "user-1",
		OriginalFilename: "broken.txt",
		ContentType:      "text/plain",
		StoragePath:      "user-1/broken/broken.txt",
	}
	f.store.attached["conv-1"] = []string{"broken", "good"}

	resp := f.fc.Query(context.Background(), "user-1", "conv-1", "question")

	assert.Equal(t, "full context answer", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "good", resp.Sources[0].ID)
}
