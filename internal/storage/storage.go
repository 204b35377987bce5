package storage

import "context"

// Service abstracts object storage for raw source content. Keys are
// derived from the owning user and source item so content can be
// located without a separate lookup.
type Service interface {
	// Save writes data under the owner/id prefix and returns the
	// storage path for later reads.
	Save(ctx context.Context, owner, id, filename string, data []byte) (string, error)

	// Read returns the full content stored at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Delete removes all objects under the owner/id prefix.
	Delete(ctx context.Context, owner, id string) error
}
