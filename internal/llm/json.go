package llm

import (
	"encoding/json"
	"strings"
)

// parseJSONObject extracts a JSON object from a model completion.
// Markdown code fences are stripped first. Unparseable text yields an
// empty map so callers can fall back to defaults without branching on
// parse errors.
func parseJSONObject(text string) map[string]interface{} {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return map[string]interface{}{}
	}
	return parsed
}
