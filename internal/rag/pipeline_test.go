package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	docs []RetrievedDocument
	err  error
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, topK int, filters map[string]interface{}, collections []string) ([]RetrievedDocument, error) {
	return f.docs, f.err
}

type fakeReranker struct {
	docs  []RetrievedDocument
	err   error
	calls int
}

func (f *fakeReranker) Rerank(_ context.Context, query string, docs []RetrievedDocument, topK int) ([]RetrievedDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.docs != nil {
		return f.docs, nil
	}
	if len(docs) > topK {
		docs = docs[:topK]
	}
	return docs, nil
}

type fakeGenerator struct {
	answer        string
	fallback      string
	generateErr   error
	fallbackErr   error
	generateCalls int
	fallbackCalls int
}

func (f *fakeGenerator) Generate(_ context.Context, query string, contextDocs []RetrievedDocument) (string, error) {
	f.generateCalls++
	return f.answer, f.generateErr
}

func (f *fakeGenerator) GenerateFallback(_ context.Context, query string) (string, error) {
	f.fallbackCalls++
	return f.fallback, f.fallbackErr
}

func docsWithScores(scores ...float64) []RetrievedDocument {
	docs := make([]RetrievedDocument, len(scores))
	for i, s := range scores {
		docs[i] = RetrievedDocument{
			ID:         string(rune('a' + i)),
			SourceType: "user_document",
			Title:      "doc",
			Content:    "content",
			Score:      s,
		}
	}
	return docs
}

func TestQuery_HappyPath(t *testing.T) {
	gen := &fakeGenerator{answer: "grounded answer"}
	p := NewPipeline(
		&fakeRetriever{docs: docsWithScores(0.9, 0.8, 0.7)},
		&fakeReranker{},
		gen,
	)

	resp := p.Query(context.Background(), "question", nil, []string{"papers"})

	assert.Equal(t, "grounded answer", resp.Answer)
	require.Len(t, resp.Sources, 3)
	assert.InDelta(t, 0.8, resp.Confidence, 1e-9)
	assert.Equal(t, 1, gen.generateCalls)
	assert.Zero(t, gen.fallbackCalls)
}

func TestQuery_EmptyRetrievalUsesFallback(t *testing.T) {
	gen := &fakeGenerator{fallback: "general knowledge answer"}
	p := NewPipeline(&fakeRetriever{}, &fakeReranker{}, gen)

	resp := p.Query(context.Background(), "question", nil, []string{"papers"})

	assert.Equal(t, "general knowledge answer", resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, resp.Confidence)
	assert.Equal(t, 1, gen.fallbackCalls)
	assert.Zero(t, gen.generateCalls)
}

func TestQuery_FallbackGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{fallbackErr: errors.New("model down")}
	p := NewPipeline(&fakeRetriever{}, &fakeReranker{}, gen)

	resp := p.Query(context.Background(), "question", nil, []string{"papers"})

	assert.Equal(t, fallbackUnavailableAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, resp.Confidence)
}

func TestQuery_GenerationFailureKeepsSources(t *testing.T) {
	gen := &fakeGenerator{generateErr: errors.New("model down")}
	p := NewPipeline(
		&fakeRetriever{docs: docsWithScores(0.9, 0.8)},
		&fakeReranker{},
		gen,
	)

	resp := p.Query(context.Background(), "question", nil, []string{"papers"})

	assert.Equal(t, generationUnavailableAnswer, resp.Answer)
	require.Len(t, resp.Sources, 2)
	assert.InDelta(t, 0.85, resp.Confidence, 1e-9)
}

func TestQuery_RerankFailureDegradesToRetrievalOrder(t *testing.T) {
	gen := &fakeGenerator{answer: "answer"}
	retrieved := docsWithScores(0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3)
	p := NewPipeline(
		&fakeRetriever{docs: retrieved},
		&fakeReranker{err: errors.New("reranker down")},
		gen,
	)

	resp := p.Query(context.Background(), "question", nil, []string{"papers"})

	assert.Equal(t, "answer", resp.Answer)
	require.Len(t, resp.Sources, RerankTopK)
	assert.Equal(t, retrieved[0].ID, resp.Sources[0].ID)
	assert.InDelta(t, retrieved[0].Score, resp.Sources[0].Score, 1e-9)
}

func TestQuery_RetrievalErrorTreatedAsEmpty(t *testing.T) {
	gen := &fakeGenerator{fallback: "fallback"}
	p := NewPipeline(
		&fakeRetriever{err: errors.New("index unreachable")},
		&fakeReranker{},
		gen,
	)

	resp := p.Query(context.Background(), "question", nil, []string{"papers"})

	assert.Equal(t, "fallback", resp.Answer)
	assert.Zero(t, resp.Confidence)
}

func TestConfidence_Clamping(t *testing.T) {
	assert.Zero(t, confidence(nil))
	assert.Equal(t, 1.0, confidence(docsWithScores(1.5, 1.2)))
	assert.Zero(t, confidence(docsWithScores(-0.5, -0.1)))
	assert.InDelta(t, 0.5, confidence(docsWithScores(0.4, 0.6)), 1e-9)
}
