package agent

import (
	"encoding/json"
	"strings"

	"github.com/airpath/airpath/internal/core"
)

// Small local models rarely emit clean structured tool calls; they embed a
// JSON object in prose, often inside a markdown fence. FindToolCall scans the
// text for the first JSON object carrying a "name" field and returns it along
// with the text cleaned of the call markup.

// FindToolCall returns the first embedded tool call in content, the content
// with the call removed, and whether a call was found. Only the first call is
// honored per turn; anything after it stays in the cleaned text.
func FindToolCall(content string) (core.ToolCallRequest, string, bool) {
	search := content
	offset := 0
	for {
		idx := strings.Index(search, "{")
		if idx == -1 {
			return core.ToolCallRequest{}, "", false
		}
		raw, end := balancedObject(search[idx:])
		if raw == "" {
			// Unbalanced tail; nothing parseable remains.
			return core.ToolCallRequest{}, "", false
		}
		var probe struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.Unmarshal([]byte(raw), &probe); err == nil && probe.Name != "" {
			args := probe.Arguments
			if args == nil {
				args = map[string]any{}
			}
			cleaned := stripCallMarkup(content, offset+idx, offset+idx+end)
			return core.ToolCallRequest{Name: probe.Name, Arguments: args}, cleaned, true
		}
		search = search[idx+1:]
		offset += idx + 1
	}
}

// balancedObject returns the substring covering the first balanced {...}
// starting at s[0], and the index just past it. String literals and escapes
// are honored so braces inside argument values don't break the scan.
func balancedObject(s string) (string, int) {
	depth := 0
	inStr := false
	esc := false
	for i, r := range s {
		if esc {
			esc = false
			continue
		}
		switch r {
		case '\\':
			if inStr {
				esc = true
			}
		case '"':
			inStr = !inStr
		case '{':
			if !inStr {
				depth++
			}
		case '}':
			if !inStr {
				depth--
				if depth == 0 {
					return s[:i+1], i + 1
				}
			}
		}
	}
	return "", 0
}

// stripCallMarkup removes content[start:end] plus any markdown fence that
// wraps just the call.
func stripCallMarkup(content string, start, end int) string {
	before := content[:start]
	after := content[end:]

	// Drop a fence opener immediately before the object ("```json\n" or "```\n").
	trimmed := strings.TrimRight(before, " \t\n")
	for _, opener := range []string{"```json", "```"} {
		if strings.HasSuffix(trimmed, opener) {
			before = strings.TrimSuffix(trimmed, opener)
			break
		}
	}
	// And the matching closer after it.
	afterTrim := strings.TrimLeft(after, " \t\n")
	if strings.HasPrefix(afterTrim, "```") {
		after = strings.TrimPrefix(afterTrim, "```")
	}

	return strings.TrimSpace(strings.TrimRight(before, " \t\n") + "\n" + strings.TrimLeft(after, " \t\n"))
}
