package rag

import "unicode"

// asciiRatioThreshold is the share of ASCII letters above which a
// query is treated as English.
const asciiRatioThreshold = 0.9

// IsEnglish reports whether text is predominantly ASCII-lettered. It
// is a cheap heuristic: queries in Latin-script languages other than
// English pass as English, which is acceptable because embedding
// models handle those directly.
func IsEnglish(text string) bool {
	total := 0
	ascii := 0
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r) {
			continue
		}
		total++
		if r < 128 {
			ascii++
		}
	}
	if total == 0 {
		return true
	}
	return float64(ascii)/float64(total) >= asciiRatioThreshold
}
