package tasks

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// Task kinds routed by the embed worker.
const (
	KindDocuments  = "embed_documents"
	KindRepository = "embed_repository"
	KindPapers     = "embed_papers"
)

// PaperRef identifies one paper inside an embed task.
type PaperRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	PDFURL string `json:"pdf_url"`
}

// EmbedTask is the message published for asynchronous embedding. Kind
// selects which of the payload fields is meaningful; an empty Kind is
// read as a document task.
type EmbedTask struct {
	Kind      string     `json:"kind"`
	UserID    string     `json:"user_id"`
	SourceIDs []string   `json:"source_ids,omitempty"`
	RepoURL   string     `json:"repo_url,omitempty"`
	Papers    []PaperRef `json:"papers,omitempty"`
}

// EmbedPublisher publishes embed tasks to Kafka.
type EmbedPublisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewEmbedPublisher creates a publisher on an existing Kafka writer.
func NewEmbedPublisher(writer *kafka.Writer) *EmbedPublisher {
	return &EmbedPublisher{
		writer: writer,
		log:    logger.New("embed_publisher", ""),
	}
}

// Publish enqueues an embed task. The message key is the user ID so
// one user's tasks stay ordered within a partition.
func (p *EmbedPublisher) Publish(ctx context.Context, task EmbedTask) error {
	msgBytes, err := json.Marshal(task)
	if err != nil {
		p.log.WithError(err).Error("failed to marshal embed task")
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.UserID),
		Value: msgBytes,
	})
	if err != nil {
		p.log.WithError(err).Error("failed to write embed task to Kafka")
		return err
	}
	return nil
}
