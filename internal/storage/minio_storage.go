package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// MinIOStorage stores source content as objects in a single bucket.
// Object keys follow "owner/id/filename".
type MinIOStorage struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

var _ Service = (*MinIOStorage)(nil)

// NewMinIOStorage creates a storage service backed by the given bucket.
func NewMinIOStorage(client *minio.Client, bucket string) *MinIOStorage {
	return &MinIOStorage{
		client: client,
		bucket: bucket,
		log:    logger.New("storage", ""),
	}
}

// Save writes data under the owner/id prefix and returns the object key.
func (s *MinIOStorage) Save(ctx context.Context, owner, id, filename string, data []byte) (string, error) {
	key := fmt.Sprintf("%s/%s/%s", owner, id, filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to store object '%s': %w", key, err)
	}
	s.log.WithPayload(map[string]interface{}{"key": key, "size": len(data)}).Debug("stored object")
	return key, nil
}

// Read returns the full content stored at path.
func (s *MinIOStorage) Read(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open object '%s': %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object '%s': %w", path, err)
	}
	return data, nil
}

// Delete removes all objects under the owner/id prefix.
func (s *MinIOStorage) Delete(ctx context.Context, owner, id string) error {
	prefix := fmt.Sprintf("%s/%s/", owner, id)
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	for obj := range objectCh {
		if obj.Err != nil {
			return fmt.Errorf("failed to list objects under '%s': %w", prefix, obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove object '%s': %w", obj.Key, err)
		}
	}
	return nil
}
