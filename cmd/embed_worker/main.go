package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nhdandz/ResearchRover/internal/config"
	"github.com/nhdandz/ResearchRover/internal/database/kafka"
	"github.com/nhdandz/ResearchRover/internal/database/milvus"
	"github.com/nhdandz/ResearchRover/internal/database/minio"
	"github.com/nhdandz/ResearchRover/internal/database/mysql"
	"github.com/nhdandz/ResearchRover/internal/embedding"
	"github.com/nhdandz/ResearchRover/internal/extract"
	"github.com/nhdandz/ResearchRover/internal/ingest"
	"github.com/nhdandz/ResearchRover/internal/pipeline"
	"github.com/nhdandz/ResearchRover/internal/storage"
	"github.com/nhdandz/ResearchRover/internal/store"
	"github.com/nhdandz/ResearchRover/internal/tasks"
	"github.com/nhdandz/ResearchRover/internal/vector"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// The embed worker: consumes embedding tasks from Kafka and runs the
// ingestion pipelines. The query paths (rag, chat) are library surface
// consumed by the API layer.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	serviceLogger := logger.New("embed_worker", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backing stores.
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to connect to MySQL")
	}
	defer mysql.Close()

	minioClient, err := minio.GetClient(&cfg.Databases.MinIO)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to connect to MinIO")
	}

	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to connect to Milvus")
	}
	defer milvus.Close()

	kafkaClient, err := kafka.GetClient(&cfg.Databases.Kafka)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to connect to Kafka")
	}
	defer kafkaClient.Close()

	dataStore, err := store.NewStore(db)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to migrate database schema")
	}
	fileStorage := storage.NewMinIOStorage(minioClient, cfg.Databases.MinIO.Bucket)

	// Vector index with one collection per corpus.
	vectorStore, err := vector.NewMilvusStore(milvusClient, cfg.Databases.Milvus.Dim)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to create vector store")
	}
	collections := []string{
		pipeline.CollectionUserDocs,
		pipeline.CollectionPapers,
		pipeline.CollectionRepositories,
	}
	for _, collection := range collections {
		if err := vectorStore.EnsureCollection(ctx, collection); err != nil {
			serviceLogger.WithError(err).Fatal("Failed to ensure collection " + collection)
		}
	}

	embeddingModel, err := embedding.NewModel(&cfg.Embedding)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to create embedding model")
	}

	// Ingestion pipelines.
	extractor := extract.NewService()
	embedder := pipeline.NewEmbedder(dataStore, dataStore, fileStorage, extractor, embeddingModel, vectorStore)
	ingestor, err := ingest.NewIngestor(&cfg.Ingest)
	if err != nil {
		serviceLogger.WithError(err).Fatal("Failed to create repository ingestor")
	}
	repoEmbedder := pipeline.NewRepoEmbedder(embedder, ingestor)
	paperEmbedder := pipeline.NewPaperEmbedder(embedder)

	embedConsumer := tasks.NewEmbedConsumer(kafkaClient.Reader, embedder, repoEmbedder, paperEmbedder)
	embedConsumer.Start(ctx)
	serviceLogger.Info("Embed worker is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	serviceLogger.Info("Shutting down")
	cancel()
}
