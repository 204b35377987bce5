package extract

import (
	"strings"
	"unicode/utf8"
)

// extractText interprets data as UTF-8 with lossy replacement of
// invalid byte sequences.
func extractText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
