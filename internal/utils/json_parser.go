package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseAnalyzerJSON extracts and parses JSON from an analysis provider
// response that may contain pure JSON, JSON wrapped in markdown code
// blocks, or JSON with surrounding prose.
func ParseAnalyzerJSON(input string, target interface{}) error {
	if input == "" {
		return fmt.Errorf("empty input")
	}

	// Direct parse first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	if extracted := extractJSONFromText(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown extracts JSON from ```json ... ``` or bare ``` blocks.
func extractFromMarkdown(input string) string {
	re1 := regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	if matches := re1.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	re2 := regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	if matches := re2.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds the first balanced JSON object or array in
// surrounding text.
func extractJSONFromText(input string) string {
	objStart := strings.Index(input, "{")
	arrStart := strings.Index(input, "[")

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		return extractBalanced(input[objStart:], '{', '}')
	}
	if arrStart >= 0 {
		return extractBalanced(input[arrStart:], '[', ']')
	}
	return ""
}

// extractBalanced returns the prefix of input forming a balanced
// open/close pair, respecting JSON string escapes.
func extractBalanced(input string, open, close byte) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}
	return ""
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
