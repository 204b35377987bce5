package vector

import "context"

// Point is one embedded chunk in a named collection. The payload
// carries the denormalized fields needed to render a search result
// without a join back to relational storage.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// SearchHit is one similarity search result. Score is a cosine
// similarity; higher is more relevant.
type SearchHit struct {
	ID      string
	Score   float32
	Payload map[string]interface{}
}

// Store abstracts the vector index.
type Store interface {
	// EnsureCollection creates and loads the collection if needed.
	EnsureCollection(ctx context.Context, collection string) error

	// Upsert writes points, overwriting points with the same ID.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Delete removes points by ID.
	Delete(ctx context.Context, collection string, ids []string) error

	// Search returns the topK most similar points, optionally filtered
	// by exact-match payload conditions.
	Search(ctx context.Context, collection string, vector []float32, topK int, filters map[string]interface{}) ([]SearchHit, error)
}
