package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cleanMarkdownWrapper strips markdown code fences that models sometimes wrap
// around JSON responses despite being told not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		// Drop the opening fence line, which may carry a language tag.
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```json")
			content = strings.TrimPrefix(content, "```")
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	return strings.TrimSpace(content)
}

// parseCandidate parses a JSON transaction candidate out of model output.
// It tolerates surrounding prose by extracting the first balanced object.
func parseCandidate(content string) (CandidateResponse, error) {
	cleaned := cleanMarkdownWrapper(content)

	// Models occasionally prepend chatter before the object.
	if !strings.HasPrefix(cleaned, "{") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return CandidateResponse{}, fmt.Errorf("no JSON object in response: %q", truncate(content, 120))
		}
		cleaned = cleaned[start : end+1]
	}

	var candidate CandidateResponse
	if err := json.Unmarshal([]byte(cleaned), &candidate); err != nil {
		return CandidateResponse{}, fmt.Errorf("failed to parse candidate JSON: %w", err)
	}

	if candidate.Amount < 0 {
		return CandidateResponse{}, fmt.Errorf("candidate has negative amount: %f", candidate.Amount)
	}

	return candidate, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
