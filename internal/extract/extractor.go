package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nhdandz/ResearchRover/internal/models"
	"github.com/nhdandz/ResearchRover/pkg/logger"
)

// ContentType identifies a supported input format by its MIME type.
type ContentType string

const (
	TypePDF      ContentType = "application/pdf"
	TypeDOCX     ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypePPTX     ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	TypeXLSX     ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	TypeCSV      ContentType = "text/csv"
	TypeHTML     ContentType = "text/html"
	TypeMarkdown ContentType = "text/markdown"
	TypePlain    ContentType = "text/plain"
	// TypeRepo marks flattened repository snapshots stored as plain text.
	TypeRepo ContentType = "text/x-github-repo"
)

var supportedTypes = map[ContentType]struct{}{
	TypePDF:      {},
	TypeDOCX:     {},
	TypePPTX:     {},
	TypeXLSX:     {},
	TypeCSV:      {},
	TypeHTML:     {},
	TypeMarkdown: {},
	TypePlain:    {},
	TypeRepo:     {},
}

var extensionTypes = map[string]ContentType{
	".pdf":  TypePDF,
	".docx": TypeDOCX,
	".pptx": TypePPTX,
	".xlsx": TypeXLSX,
	".csv":  TypeCSV,
	".html": TypeHTML,
	".htm":  TypeHTML,
	".md":   TypeMarkdown,
	".txt":  TypePlain,
}

// ResolveContentType maps a declared MIME type, the filename extension
// and finally content sniffing to a supported ContentType. Precedence:
// declared type, extension, sniffed type.
func ResolveContentType(declared, filename string, data []byte) (ContentType, error) {
	if ct := ContentType(declared); declared != "" {
		if _, ok := supportedTypes[ct]; ok {
			return ct, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := extensionTypes[ext]; ok {
		return ct, nil
	}

	sniffed := mimetype.Detect(data)
	for ct := range supportedTypes {
		if sniffed.Is(string(ct)) {
			return ct, nil
		}
	}

	return "", fmt.Errorf("%w: %q (extension %q)", models.ErrUnsupportedContentType, declared, ext)
}

// Extractor turns raw file bytes into plain text.
type Extractor interface {
	Extract(data []byte, contentType ContentType) (string, error)
}

// Service dispatches extraction to the per-format implementations. All
// extraction operates on already-local bytes; no network I/O occurs.
type Service struct {
	log *logger.Logger
}

var _ Extractor = (*Service)(nil)

// NewService creates a content extraction service.
func NewService() *Service {
	return &Service{log: logger.New("extractor", "")}
}

// Extract returns the plain text content of data.
func (s *Service) Extract(data []byte, contentType ContentType) (string, error) {
	switch contentType {
	case TypePDF:
		return extractPDF(data)
	case TypeDOCX:
		return extractDOCX(data)
	case TypePPTX:
		return extractPPTX(data)
	case TypeXLSX:
		return extractXLSX(data)
	case TypeCSV:
		return extractCSV(data)
	case TypeHTML:
		return extractHTML(data)
	case TypePlain, TypeMarkdown, TypeRepo:
		return extractText(data), nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedContentType, contentType)
	}
}
