package tasks

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/internal/pipeline"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// EmbedRunner executes one document embed batch.
type EmbedRunner interface {
	EmbedSources(ctx context.Context, userID string, sourceIDs []string) []models.EmbedResult
}

// RepoRunner embeds one repository.
type RepoRunner interface {
	EmbedRepo(ctx context.Context, userID, repoURL string) models.EmbedResult
}

// PaperRunner embeds a batch of papers.
type PaperRunner interface {
	EmbedPapers(ctx context.Context, userID string, papers []pipeline.Paper) []models.EmbedResult
}

// EmbedConsumer consumes embed tasks from Kafka and routes them to the
// embedding pipelines by kind.
type EmbedConsumer struct {
	reader *kafka.Reader
	docs   EmbedRunner
	repos  RepoRunner
	papers PaperRunner
	log    *logger.Logger
}

// NewEmbedConsumer creates a consumer on an existing Kafka reader.
func NewEmbedConsumer(reader *kafka.Reader, docs EmbedRunner, repos RepoRunner, papers PaperRunner) *EmbedConsumer {
	return &EmbedConsumer{
		reader: reader,
		docs:   docs,
		repos:  repos,
		papers: papers,
		log:    logger.New("embed_consumer", ""),
	}
}

// Start consumes embed tasks until the context is canceled. Per-item
// embedding failures are recorded on the EmbeddingRecord by the
// runners; messages are committed regardless so a poisoned task cannot
// wedge the partition.
func (c *EmbedConsumer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				c.log.Info("stopping embed task consumer")
				return
			default:
				msg, err := c.reader.FetchMessage(ctx)
				if err != nil {
					if ctx.Err() == nil {
						c.log.WithError(err).Error("failed to fetch embed task")
					}
					continue
				}

				var task EmbedTask
				if err := json.Unmarshal(msg.Value, &task); err != nil {
					c.log.WithError(err).WithPayload(map[string]interface{}{
						"offset": msg.Offset,
					}).Error("failed to decode embed task")
				} else {
					c.handle(ctx, task)
				}

				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					c.log.WithError(err).Error("failed to commit embed task")
				}
			}
		}
	}()
}

func (c *EmbedConsumer) handle(ctx context.Context, task EmbedTask) {
	var results []models.EmbedResult

	switch task.Kind {
	case KindDocuments, "":
		results = c.docs.EmbedSources(ctx, task.UserID, task.SourceIDs)
	case KindRepository:
		results = []models.EmbedResult{c.repos.EmbedRepo(ctx, task.UserID, task.RepoURL)}
	case KindPapers:
		papers := make([]pipeline.Paper, len(task.Papers))
		for i, ref := range task.Papers {
			papers[i] = pipeline.Paper{ID: ref.ID, Title: ref.Title, URL: ref.URL, PDFURL: ref.PDFURL}
		}
		results = c.papers.EmbedPapers(ctx, task.UserID, papers)
	default:
		c.log.WithPayload(map[string]interface{}{
			"kind": task.Kind,
		}).Error("unknown embed task kind")
		return
	}

	failed := 0
	for _, res := range results {
		if res.Status == models.EmbedStatusFailed {
			failed++
		}
	}
	c.log.WithPayload(map[string]interface{}{
		"kind":    task.Kind,
		"user_id": task.UserID,
		"items":   len(results),
		"failed":  failed,
	}).Info("embed task processed")
}
