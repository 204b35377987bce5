package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/nhdandz/ResearchRover/internal/config"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// contentPrefixLimit bounds the content sent per document to the
// scoring service.
const contentPrefixLimit = 512

// CrossEncoderReranker scores (query, document) pairs against a hosted
// cross-encoder model. Raw logits are calibrated to (0,1) with a
// sigmoid, which replaces each document's retrieval score in place.
type CrossEncoderReranker struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

var _ Reranker = (*CrossEncoderReranker)(nil)

// NewCrossEncoderReranker creates a reranker client.
func NewCrossEncoderReranker(cfg *config.RerankerConfig) *CrossEncoderReranker {
	return &CrossEncoderReranker{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.New("reranker", ""),
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Rerank returns at most topK documents ordered by calibrated
// relevance. Empty input yields an empty result without calling the
// model. Ties keep the original retrieval order.
func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, docs []RetrievedDocument, topK int) ([]RetrievedDocument, error) {
	if len(docs) == 0 {
		return []RetrievedDocument{}, nil
	}

	prefixes := make([]string, len(docs))
	for i, doc := range docs {
		prefixes[i] = contentPrefix(doc.Content)
	}

	scores, err := r.score(ctx, query, prefixes)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(docs) {
		return nil, fmt.Errorf("reranker returned %d scores for %d documents", len(scores), len(docs))
	}

	type scored struct {
		doc   RetrievedDocument
		logit float64
	}
	ranked := make([]scored, len(docs))
	for i, doc := range docs {
		ranked[i] = scored{doc: doc, logit: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].logit > ranked[j].logit
	})

	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	result := make([]RetrievedDocument, len(ranked))
	for i, s := range ranked {
		s.doc.Score = sigmoid(s.logit)
		result[i] = s.doc
	}
	return result, nil
}

func (r *CrossEncoderReranker) score(ctx context.Context, query string, documents []string) ([]float64, error) {
	body, err := json.Marshal(rerankRequest{Model: r.model, Query: query, Documents: documents})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reranker returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}
	return parsed.Scores, nil
}

// contentPrefix truncates content to the scoring prefix length.
func contentPrefix(content string) string {
	if len(content) <= contentPrefixLimit {
		return content
	}
	return content[:contentPrefixLimit]
}

// sigmoid calibrates an unbounded logit into (0,1).
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
