package llm

import (
	"strings"
)

// StripFences removes a surrounding markdown code fence from an LLM response,
// returning the inner text trimmed. Models frequently wrap JSON in ```json
// fences even when told not to; strict parsing happens downstream.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}
