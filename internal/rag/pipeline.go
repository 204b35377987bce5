package rag

import (
	"context"

	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// Default fan-out of the RAG path: a wide retrieval pass narrowed by
// the reranker.
const (
	RetrieveTopK = 10
	RerankTopK   = 5
)

// User-facing degraded answers. Generation failures never surface as
// protocol errors; they replace the answer text while the computed
// sources are preserved.
const (
	fallbackUnavailableAnswer = "Sorry, I couldn't find relevant information in your documents " +
		"and the language model is currently unavailable. Please try again later."
	generationUnavailableAnswer = "I found relevant documents but the language model is currently unavailable. " +
		"Please try again later. Found sources are listed below."
)

// Pipeline is the RAG query path: retrieve, rerank, generate.
type Pipeline struct {
	retriever Retriever
	reranker  Reranker
	generator Generator
	log       *logger.Logger
}

// NewPipeline wires the RAG query path.
func NewPipeline(retriever Retriever, reranker Reranker, generator Generator) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		log:       logger.New("rag", ""),
	}
}

// Query answers a question against the given collection set. The
// result is always a well-formed Response: empty retrieval yields an
// ungrounded fallback answer with zero confidence, and generation
// failures substitute a fixed message while keeping the sources.
func (p *Pipeline) Query(ctx context.Context, question string, filters map[string]interface{}, collections []string) Response {
	retrieved, err := p.retriever.Retrieve(ctx, question, RetrieveTopK, filters, collections)
	if err != nil {
		p.log.WithError(err).Error("retrieval failed, treating as empty")
		retrieved = nil
	}

	if len(retrieved) == 0 {
		answer, err := p.generator.GenerateFallback(ctx, question)
		if err != nil {
			p.log.WithError(err).Error("fallback generation failed")
			answer = fallbackUnavailableAnswer
		}
		return Response{Answer: answer, Sources: []Source{}, Confidence: 0}
	}

	reranked, err := p.reranker.Rerank(ctx, question, retrieved, RerankTopK)
	if err != nil {
		// Degrade to the retrieval order; cosine similarities stand in
		// for calibrated scores.
		p.log.WithError(err).Warn("reranking failed, using retrieval order")
		reranked = retrieved
		if len(reranked) > RerankTopK {
			reranked = reranked[:RerankTopK]
		}
	}

	answer, err := p.generator.Generate(ctx, question, reranked)
	if err != nil {
		p.log.WithError(err).Error("answer generation failed")
		answer = generationUnavailableAnswer
	}

	sources := make([]Source, len(reranked))
	for i, doc := range reranked {
		sources[i] = Source{
			ID:    doc.ID,
			Type:  doc.SourceType,
			Title: doc.Title,
			URL:   doc.URL,
			Score: doc.Score,
		}
	}

	return Response{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence(reranked),
	}
}

// confidence is the mean of the calibrated scores, clamped to [0,1].
func confidence(docs []RetrievedDocument) float64 {
	if len(docs) == 0 {
		return 0
	}
	var sum float64
	for _, doc := range docs {
		sum += doc.Score
	}
	mean := sum / float64(len(docs))
	if mean < 0 {
		return 0
	}
	if mean > 1 {
		return 1
	}
	return mean
}
