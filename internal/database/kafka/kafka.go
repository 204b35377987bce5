package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nhdandz/ResearchRover/internal/config"
	"github.com/segmentio/kafka-go"
)

// Client holds the singleton Kafka writer and reader used by the async
// embedding path.
type Client struct {
	Writer *kafka.Writer
	Reader *kafka.Reader
	Conn   *kafka.Conn
	Config *config.KafkaConfig
}

var (
	client  *Client
	once    sync.Once
	initErr error
)

// GetClient initializes and returns the singleton Kafka client. On
// first call it connects to the cluster and creates the embed topic if
// it does not exist yet.
func GetClient(cfg *config.KafkaConfig) (*Client, error) {
	once.Do(func() {
		if len(cfg.Brokers) == 0 {
			initErr = fmt.Errorf("no Kafka brokers configured")
			return
		}
		if cfg.EmbedTopic == "" {
			initErr = fmt.Errorf("no Kafka embed topic configured")
			return
		}

		conn, err := kafka.Dial("tcp", cfg.Brokers[0])
		if err != nil {
			initErr = fmt.Errorf("failed to connect to Kafka: %w", err)
			return
		}

		partitions, err := conn.ReadPartitions()
		if err != nil {
			initErr = fmt.Errorf("failed to read Kafka partitions: %w", err)
			conn.Close()
			return
		}
		exists := false
		for _, p := range partitions {
			if p.Topic == cfg.EmbedTopic {
				exists = true
				break
			}
		}
		if !exists {
			err = conn.CreateTopics(kafka.TopicConfig{
				Topic:             cfg.EmbedTopic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			})
			if err != nil {
				initErr = fmt.Errorf("failed to create Kafka topic '%s': %w", cfg.EmbedTopic, err)
				conn.Close()
				return
			}
		}

		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.EmbedTopic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		}

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.EmbedTopic,
			GroupID:     cfg.GroupID,
			MinBytes:    10e3,
			MaxBytes:    10e6,
			MaxAttempts: 10,
			Dialer: &kafka.Dialer{
				Timeout: 10 * time.Second,
			},
		})

		client = &Client{Writer: writer, Reader: reader, Conn: conn, Config: cfg}
	})

	return client, initErr
}

// Close safely closes the writer, reader and admin connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Writer != nil {
		if err := c.Writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Kafka writer: %w", err))
		}
	}
	if c.Reader != nil {
		if err := c.Reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Kafka reader: %w", err))
		}
	}
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Kafka admin connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing Kafka client: %v", errs)
	}
	return nil
}

// HealthCheck verifies the cluster is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.Conn == nil {
		return fmt.Errorf("kafka client not initialized")
	}
	_, err := c.Conn.Controller()
	return err
}
