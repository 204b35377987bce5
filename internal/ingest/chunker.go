package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Default chunking parameters for repository content. Code files use a
// smaller window than prose documents.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 100
)

// OverviewFilePath is the reserved file path of the synthesized
// overview chunk.
const OverviewFilePath = "OVERVIEW"

// Chunk is one embeddable unit of repository content. Index is
// assigned globally and monotonically across the overview and all file
// chunks in source order.
type Chunk struct {
	Content  string
	FilePath string
	Index    int
}

// fileBoundaryRe matches the boundary markers delimiting per-file
// sections in flattened repository content:
//
//	================================================
//	File: path/to/file.go
//	================================================
var fileBoundaryRe = regexp.MustCompile(`(?m)^={4,}\nFile:\s*(.+?)\n={4,}$`)

// ChunkRepoContent splits a flattened repository into chunks. The
// overview chunk (summary + file tree) comes first when either part is
// non-empty; per-file sections follow in source order, each prefixed
// with a "# File: <path>" header. Files larger than chunkSize are
// windowed with newline-aware cuts. When no boundary markers exist the
// whole content is windowed as a single pseudo-file named "content".
func ChunkRepoContent(repo *RepoContent, chunkSize, overlap int, excludes []glob.Glob) []Chunk {
	var chunks []Chunk
	idx := 0

	overview := fmt.Sprintf("# Repository Overview: %s\n\n", repo.RepoName)
	if repo.Summary != "" {
		overview += "## Summary\n" + repo.Summary + "\n\n"
	}
	if repo.Tree != "" {
		overview += "## File Structure\n" + repo.Tree + "\n"
	}
	if strings.TrimSpace(overview) != "" {
		chunks = append(chunks, Chunk{Content: strings.TrimSpace(overview), FilePath: OverviewFilePath, Index: idx})
		idx++
	}

	if repo.Content == "" {
		return chunks
	}

	matches := fileBoundaryRe.FindAllStringSubmatchIndex(repo.Content, -1)
	if len(matches) == 0 {
		for _, sub := range subChunk(repo.Content, chunkSize, overlap) {
			chunks = append(chunks, Chunk{Content: sub, FilePath: "content", Index: idx})
			idx++
		}
		return chunks
	}

	type filePair struct {
		path    string
		content string
	}
	var pairs []filePair
	for i, m := range matches {
		path := strings.TrimSpace(repo.Content[m[2]:m[3]])
		contentEnd := len(repo.Content)
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		}
		content := strings.TrimSpace(repo.Content[m[1]:contentEnd])
		if content == "" || isExcluded(path, excludes) {
			continue
		}
		pairs = append(pairs, filePair{path: path, content: content})
	}

	for _, pair := range pairs {
		header := fmt.Sprintf("# File: %s\n\n", pair.path)
		if len(pair.content) <= chunkSize {
			chunks = append(chunks, Chunk{Content: header + pair.content, FilePath: pair.path, Index: idx})
			idx++
			continue
		}
		for _, sub := range subChunk(pair.content, chunkSize, overlap) {
			chunks = append(chunks, Chunk{Content: header + sub, FilePath: pair.path, Index: idx})
			idx++
		}
	}

	return chunks
}

// subChunk windows text with newline-aware cuts: the second half of
// each window is searched backward for a newline to cut at.
func subChunk(text string, chunkSize, overlap int) []string {
	var results []string
	start := 0
	textLen := len(text)

	for start < textLen {
		end := start + chunkSize
		if end < textLen {
			searchStart := start + chunkSize/2
			if nl := strings.LastIndex(text[searchStart:end], "\n"); nl >= 0 {
				end = searchStart + nl + 1
			}
		}

		sliceEnd := min(end, textLen)
		if chunk := strings.TrimSpace(text[start:sliceEnd]); chunk != "" {
			results = append(results, chunk)
		}

		start = end - overlap
		if start >= textLen {
			break
		}
	}

	return results
}

func isExcluded(path string, excludes []glob.Glob) bool {
	for _, g := range excludes {
		if g.Match(path) {
			return true
		}
	}
	return false
}
