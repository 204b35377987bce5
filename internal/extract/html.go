package extract

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// extractHTML converts an HTML document to Markdown, which preserves
// headings and link targets for downstream chunking.
func extractHTML(data []byte) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(string(data))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return markdown, nil
}
