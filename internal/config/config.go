package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MilvusConfig holds the connection settings for the Milvus vector index.
type MilvusConfig struct {
	Address string `yaml:"address"` // Milvus service address, e.g. "localhost:19530"
	// Dim is the embedding dimension used when collections are created.
	Dim int `yaml:"dim"`
}

// RedisConfig holds the connection settings for Redis.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MySQLConfig holds the connection settings for MySQL.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// MinIOConfig holds the connection settings for MinIO object storage.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// KafkaConfig holds the connection settings for the Kafka task queue.
type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	EmbedTopic string   `yaml:"embedTopic"`
	GroupID    string   `yaml:"groupID"`
}

// ProviderConfig describes a single model provider entry.
type ProviderConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider string         `yaml:"provider"` // "ollama" or "gemini"
	Ollama   ProviderConfig `yaml:"ollama"`
	Gemini   ProviderConfig `yaml:"gemini"`
}

// EmbeddingConfig selects and configures the embedding model provider.
type EmbeddingConfig struct {
	Provider    string         `yaml:"provider"` // "ollama", "openai", "gemini", "huggingface"
	Ollama      ProviderConfig `yaml:"ollama"`
	OpenAI      ProviderConfig `yaml:"openai"`
	Gemini      ProviderConfig `yaml:"gemini"`
	HuggingFace ProviderConfig `yaml:"huggingface"`
}

// RerankerConfig configures the cross-encoder scoring service.
type RerankerConfig struct {
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// IngestConfig configures the repository flattening service client.
type IngestConfig struct {
	BaseURL string `yaml:"baseURL"`
	// ExcludePatterns are glob patterns for file paths dropped during
	// repository chunking, e.g. "vendor/**" or "*.lock".
	ExcludePatterns []string `yaml:"excludePatterns"`
}

// DatabaseConfigs groups all backing store configurations.
type DatabaseConfigs struct {
	Milvus MilvusConfig `yaml:"milvus"`
	Redis  RedisConfig  `yaml:"redis"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	MinIO  MinIOConfig  `yaml:"minio"`
	Kafka  KafkaConfig  `yaml:"kafka"`
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	Logger    LoggerConfig    `yaml:"logger"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Reranker  RerankerConfig  `yaml:"reranker"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Databases DatabaseConfigs `yaml:"databases"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
