package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileSection(path, content string) string {
	marker := strings.Repeat("=", 48)
	return fmt.Sprintf("%s\nFile: %s\n%s\n%s\n", marker, path, marker, content)
}

func TestChunkRepoContent_OverviewComesFirst(t *testing.T) {
	repo := &RepoContent{
		RepoName: "acme/widget",
		Summary:  "A widget library.",
		Tree:     "widget.go\nwidget_test.go",
		Content:  fileSection("widget.go", "package widget"),
	}

	chunks := ChunkRepoContent(repo, DefaultChunkSize, DefaultOverlap, nil)

	require.Len(t, chunks, 2)
	assert.Equal(t, OverviewFilePath, chunks[0].FilePath)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Contains(t, chunks[0].Content, "# Repository Overview: acme/widget")
	assert.Contains(t, chunks[0].Content, "## Summary\nA widget library.")
	assert.Contains(t, chunks[0].Content, "## File Structure\nwidget.go")

	assert.Equal(t, "widget.go", chunks[1].FilePath)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, "# File: widget.go\n\npackage widget", chunks[1].Content)
}

func TestChunkRepoContent_FilesInSourceOrder(t *testing.T) {
	repo := &RepoContent{
		RepoName: "acme/widget",
		Content: fileSection("a.go", "package a") +
			fileSection("b.go", "package b") +
			fileSection("c.go", "package c"),
	}

	chunks := ChunkRepoContent(repo, DefaultChunkSize, DefaultOverlap, nil)

	require.Len(t, chunks, 4)
	paths := []string{chunks[1].FilePath, chunks[2].FilePath, chunks[3].FilePath}
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, paths)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkRepoContent_ExcludesMatchingPaths(t *testing.T) {
	excludes := []glob.Glob{
		glob.MustCompile("vendor/**", '/'),
		glob.MustCompile("*.lock", '/'),
	}
	repo := &RepoContent{
		RepoName: "acme/widget",
		Content: fileSection("main.go", "package main") +
			fileSection("vendor/lib/dep.go", "package dep") +
			fileSection("go.lock", "lockfile"),
	}

	chunks := ChunkRepoContent(repo, DefaultChunkSize, DefaultOverlap, excludes)

	require.Len(t, chunks, 2)
	assert.Equal(t, OverviewFilePath, chunks[0].FilePath)
	assert.Equal(t, "main.go", chunks[1].FilePath)
}

func TestChunkRepoContent_AllFilesExcludedYieldsNoPseudoFile(t *testing.T) {
	excludes := []glob.Glob{glob.MustCompile("vendor/**", '/')}
	repo := &RepoContent{
		RepoName: "acme/widget",
		Content:  fileSection("vendor/dep.go", "package dep"),
	}

	chunks := ChunkRepoContent(repo, DefaultChunkSize, DefaultOverlap, excludes)

	// Boundary markers exist, so the raw-content fallback does not kick
	// in even though everything was excluded.
	require.Len(t, chunks, 1)
	assert.Equal(t, OverviewFilePath, chunks[0].FilePath)
}

func TestChunkRepoContent_NoBoundariesFallsBackToRawContent(t *testing.T) {
	repo := &RepoContent{
		RepoName: "acme/widget",
		Content:  "just some flattened text without file markers",
	}

	chunks := ChunkRepoContent(repo, DefaultChunkSize, DefaultOverlap, nil)

	require.Len(t, chunks, 2)
	assert.Equal(t, "content", chunks[1].FilePath)
	assert.Equal(t, "just some flattened text without file markers", chunks[1].Content)
}

func TestChunkRepoContent_OversizeFileIsWindowedWithHeader(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&body, "line %02d of the big file\n", i)
	}
	repo := &RepoContent{
		RepoName: "acme/widget",
		Content:  fileSection("big.go", body.String()),
	}

	chunks := ChunkRepoContent(repo, 200, 40, nil)

	require.Greater(t, len(chunks), 2)
	for i, c := range chunks[1:] {
		assert.Equal(t, "big.go", c.FilePath)
		assert.True(t, strings.HasPrefix(c.Content, "# File: big.go\n\n"))
		assert.Equal(t, i+1, c.Index)
	}
	// First and last lines survive the windowing.
	assert.Contains(t, chunks[1].Content, "line 00")
	assert.Contains(t, chunks[len(chunks)-1].Content, "line 39")
}

func TestSubChunk_CutsAtNewlines(t *testing.T) {
	var text strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&text, "line%02d\n", i)
	}

	subs := subChunk(text.String(), 50, 10)

	require.Greater(t, len(subs), 1)
	for _, sub := range subs {
		assert.LessOrEqual(t, len(sub), 50)
		// Newline-aware cuts end each window on a full line.
		assert.False(t, strings.HasSuffix(sub, "lin"))
	}
	assert.True(t, strings.HasSuffix(subs[0], "line06"))
}

func TestSubChunk_ShortTextSingleChunk(t *testing.T) {
	subs := subChunk("short", 50, 10)
	assert.Equal(t, []string{"short"}, subs)
}
