package rag

import "context"

// RetrievedDocument is the transient result of retrieval. Score
// initially holds the vector index similarity; the reranker replaces
// it in place with a calibrated score in (0,1).
type RetrievedDocument struct {
	ID         string
	SourceType string
	Title      string
	URL        string
	Content    string
	Score      float64
}

// Retriever searches the vector index across collections.
type Retriever interface {
	// Retrieve returns up to topK documents ranked by similarity,
	// merged across the requested collections. It returns an empty
	// sequence, never an error, when nothing matches or the index is
	// unreachable.
	Retrieve(ctx context.Context, query string, topK int, filters map[string]interface{}, collections []string) ([]RetrievedDocument, error)
}

// Reranker re-orders retrieved documents with a cross-encoder.
type Reranker interface {
	// Rerank returns at most topK documents ordered by calibrated
	// relevance, replacing each document's score in place.
	Rerank(ctx context.Context, query string, docs []RetrievedDocument, topK int) ([]RetrievedDocument, error)
}

// Generator produces answers from ranked context.
type Generator interface {
	// Generate produces a grounded answer from the context documents.
	Generate(ctx context.Context, query string, contextDocs []RetrievedDocument) (string, error)

	// GenerateFallback produces an ungrounded answer for queries with
	// no retrieval results.
	GenerateFallback(ctx context.Context, query string) (string, error)
}

// Source is one citation entry in a response.
type Source struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Score float64 `json:"relevance_score"`
}

// Response is the answer envelope returned by both query paths. A
// degraded request still yields a well-formed Response; the failure
// shows up in the answer text and a zero confidence.
type Response struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}
