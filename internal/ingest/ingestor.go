package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/nhdandz/ResearchRover/internal/config"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// MaxContentSize caps the flattened repository content at 2 MiB.
// Larger content is truncated with a logged warning; the caller only
// observes the reduced length.
const MaxContentSize = 2 * 1024 * 1024

// RepoContent is the flattened form of one repository snapshot.
type RepoContent struct {
	Summary  string
	Tree     string
	Content  string
	RepoName string
}

// Ingestor fetches flattened repository snapshots from the external
// repository-flattening service.
type Ingestor struct {
	baseURL    string
	httpClient *http.Client
	excludes   []glob.Glob
	log        *logger.Logger
}

// NewIngestor creates an Ingestor and compiles the configured exclude
// patterns. Invalid patterns fail construction.
func NewIngestor(cfg *config.IngestConfig) (*Ingestor, error) {
	excludes := make([]glob.Glob, 0, len(cfg.ExcludePatterns))
	for _, pattern := range cfg.ExcludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, g)
	}
	return &Ingestor{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		excludes:   excludes,
		log:        logger.New("ingestor", ""),
	}, nil
}

type ingestRequest struct {
	URL string `json:"url"`
}

type ingestResponse struct {
	Summary string `json:"summary"`
	Tree    string `json:"tree"`
	Content string `json:"content"`
}

// Ingest flattens the repository at repoURL into a single RepoContent.
func (ing *Ingestor) Ingest(ctx context.Context, repoURL string) (*RepoContent, error) {
	ing.log.WithPayload(map[string]interface{}{"url": repoURL}).Info("ingesting repository")

	body, err := json.Marshal(ingestRequest{URL: repoURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ing.baseURL+"/ingest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build ingest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ing.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ingest service returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ingest response: %w", err)
	}

	repoName := canonicalRepoName(repoURL)
	content := parsed.Content
	if len(content) > MaxContentSize {
		content = content[:MaxContentSize]
		ing.log.WithPayload(map[string]interface{}{
			"repo_name": repoName,
			"max_size":  MaxContentSize,
		}).Warn("repository content truncated")
	}

	return &RepoContent{
		Summary:  parsed.Summary,
		Tree:     parsed.Tree,
		Content:  content,
		RepoName: repoName,
	}, nil
}

// Chunk splits a flattened repository into embedding chunks using the
// default repository chunk parameters and the configured excludes.
func (ing *Ingestor) Chunk(repo *RepoContent) []Chunk {
	return ChunkRepoContent(repo, DefaultChunkSize, DefaultOverlap, ing.excludes)
}

// canonicalRepoName derives "owner/repo" from a repository URL.
func canonicalRepoName(repoURL string) string {
	trimmed := strings.TrimRight(repoURL, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return repoURL
}
