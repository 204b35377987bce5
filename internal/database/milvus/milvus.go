package milvus

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/nhdandz/ResearchRover/internal/config"
)

var (
	instance client.Client
	once     sync.Once
	initErr  error
)

// GetClient initializes and returns the singleton Milvus client. The
// connection is established once for the process lifetime.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (client.Client, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to Milvus: %w", err)
			return
		}
		instance = c
	})
	return instance, initErr
}

// Close safely closes the singleton Milvus connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}

// HealthCheck verifies the Milvus connection by listing collections.
func HealthCheck(ctx context.Context) error {
	if instance == nil {
		return fmt.Errorf("milvus client not initialized")
	}
	if _, err := instance.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}
