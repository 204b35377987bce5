package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhdandz/ResearchRover/internal/extract"
	"github.com/nhdandz/ResearchRover/internal/models"
)

// minPaperPDFSize rejects download responses too small to be a real
// PDF (error pages served with status 200).
const minPaperPDFSize = 100

// Paper identifies one external paper to embed.
type Paper struct {
	ID     string
	Title  string
	URL    string
	PDFURL string
}

// PaperEmbedder downloads paper PDFs and embeds them into the shared
// papers collection.
type PaperEmbedder struct {
	*Embedder
	httpClient *http.Client
}

// NewPaperEmbedder wires the paper ingestion flow.
func NewPaperEmbedder(e *Embedder) *PaperEmbedder {
	return &PaperEmbedder{
		Embedder:   e,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// EmbedPapers embeds a batch of papers. Papers are processed
// independently: one paper's failure never aborts its siblings.
func (p *PaperEmbedder) EmbedPapers(ctx context.Context, userID string, papers []Paper) []models.EmbedResult {
	results := make([]models.EmbedResult, 0, len(papers))
	for _, paper := range papers {
		results = append(results, p.EmbedPaper(ctx, userID, paper))
	}
	return results
}

// EmbedPaper downloads one paper's PDF, persists it as a SourceItem
// and runs the embedding pipeline against the papers collection. A
// previously downloaded paper reuses its SourceItem.
func (p *PaperEmbedder) EmbedPaper(ctx context.Context, userID string, paper Paper) models.EmbedResult {
	src, err := p.findOrCreatePaperSource(ctx, userID, paper)
	if err != nil {
		return models.EmbedResult{
			Status:       models.EmbedStatusFailed,
			ErrorMessage: truncate(err.Error(), resultErrorLimit),
		}
	}

	return p.runPipeline(ctx, userID, src, embedTarget{
		collection: CollectionPapers,
		sourceType: models.SourceTypePaper,
		title:      paper.Title,
		url:        paper.URL,
	})
}

// findOrCreatePaperSource reuses the SourceItem persisted for a paper,
// or downloads the PDF and persists a new one.
func (p *PaperEmbedder) findOrCreatePaperSource(ctx context.Context, userID string, paper Paper) (*models.SourceItem, error) {
	note := "paper:" + paper.ID
	if src, err := p.sources.FindSourceByNote(ctx, userID, note); err == nil {
		return src, nil
	}

	if paper.PDFURL == "" {
		return nil, fmt.Errorf("paper %s has no PDF URL", paper.ID)
	}

	content, err := p.downloadPDF(ctx, paper.PDFURL)
	if err != nil {
		return nil, err
	}
	if len(content) < minPaperPDFSize {
		return nil, fmt.Errorf("downloaded PDF for paper %s is too small (%d bytes)", paper.ID, len(content))
	}

	id := uuid.New().String()
	filename := sanitizeFilename(paper.Title) + ".pdf"
	path, err := p.files.Save(ctx, userID, id, filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store paper PDF: %w", err)
	}

	src := &models.SourceItem{
		ID:               id,
		UserID:           userID,
		Filename:         filename,
		OriginalFilename: filename,
		ContentType:      string(extract.TypePDF),
		FileSize:         int64(len(content)),
		StoragePath:      path,
		Note:             note,
		CreatedAt:        time.Now(),
	}
	if err := p.sources.CreateSource(ctx, src); err != nil {
		return nil, fmt.Errorf("failed to persist paper source: %w", err)
	}
	return src, nil
}

func (p *PaperEmbedder) downloadPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build PDF request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PDF download returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF body: %w", err)
	}
	return content, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFilename reduces a title to a safe storage filename.
func sanitizeFilename(title string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(title, "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		cleaned = "paper"
	}
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
	}
	return cleaned
}
