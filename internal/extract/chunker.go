package extract

import "strings"

// Default chunking parameters for document text.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// ChunkText splits text into overlapping windows of chunkSize
// characters. Before cutting, the last 20% of the window is searched
// backward for a sentence terminator (". ") or newline; the cut moves
// there when a break point is found, so chunks avoid splitting
// mid-sentence. Consecutive windows overlap by overlap characters.
// Chunks that trim to empty are discarded. The result is deterministic
// for identical input.
func ChunkText(text string, chunkSize, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	start := 0
	textLen := len(text)

	for start < textLen {
		end := start + chunkSize

		if end < textLen {
			searchStart := end - chunkSize/5
			lastPeriod := strings.LastIndex(text[searchStart:end], ". ")
			lastNewline := strings.LastIndex(text[searchStart:end], "\n")
			if breakPoint := max(lastPeriod, lastNewline); breakPoint > 0 {
				end = searchStart + breakPoint + 1
			}
		}

		sliceEnd := min(end, textLen)
		if chunk := strings.TrimSpace(text[start:sliceEnd]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// The unclamped end keeps the advance at chunkSize-overlap even
		// on the final window, which terminates the walk.
		start = end - overlap
		if start >= textLen {
			break
		}
	}

	return chunks
}
