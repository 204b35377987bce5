package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/v2/presentation"
	"github.com/unidoc/unioffice/v2/schema/soo/dml"
)

// extractPPTX concatenates the non-empty placeholder paragraph texts of
// each slide with newlines, and joins slides with blank-line
// separators. Slides with no text are omitted.
func extractPPTX(data []byte) (string, error) {
	ppt, err := presentation.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PPTX: %w", err)
	}
	defer ppt.Close()

	var slides []string
	for _, slide := range ppt.Slides() {
		var texts []string
		for _, ph := range slide.PlaceHolders() {
			for _, para := range ph.Paragraphs() {
				text := strings.TrimSpace(paragraphText(para.X().EG_TextRun))
				if text != "" {
					texts = append(texts, text)
				}
			}
		}
		if len(texts) > 0 {
			slides = append(slides, strings.Join(texts, "\n"))
		}
	}

	return strings.Join(slides, "\n\n"), nil
}

// paragraphText flattens the regular text runs of one paragraph.
func paragraphText(runs []*dml.EG_TextRun) string {
	var sb strings.Builder
	for _, run := range runs {
		if run != nil && run.TextRunChoice != nil && run.TextRunChoice.R != nil {
			sb.WriteString(run.TextRunChoice.R.T)
		}
	}
	return sb.String()
}
