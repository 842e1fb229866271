package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/airpath/airpath/internal/core"
)

// staticInstructions anchor the model's behavior: answer flight-planning
// questions, call at most one tool per response, and emit the call as a bare
// JSON object.
const staticInstructions = `You are AirPath, an offline flight-planning assistant for general aviation pilots in Europe. You answer questions about airports, routes, border crossings, customs notification requirements, and country entry rules using the tools below.

To call a tool, respond with a single JSON object and nothing else:
{"name": "<tool_name>", "arguments": {<parameters>}}

Call at most one tool per response. After you receive the tool result, either call another tool or answer the pilot in plain language. Distances are nautical miles, bearings are degrees true. If a tool reports an error, tell the pilot what is missing instead of guessing. Never invent airport data.`

// BuildPrompt renders the full prompt for one model turn: instructions, the
// tool catalog, the recent conversation window, and the new user message.
func BuildPrompt(catalog []core.ToolSpec, history []core.Turn, userMsg string) string {
	var b strings.Builder
	b.WriteString(staticInstructions)
	b.WriteString("\n\nAvailable tools:\n")
	b.WriteString(renderCatalog(catalog))

	for _, t := range history {
		b.WriteString("\n")
		b.WriteString(roleTag(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Content)
	}

	b.WriteString("\nUser: ")
	b.WriteString(userMsg)
	b.WriteString("\nAssistant:")
	return b.String()
}

// BuildFollowup renders the continuation prompt after a tool ran: the prior
// prompt context plus the (truncated) result, asking the model to continue.
func BuildFollowup(prior string, toolName, result string) string {
	var b strings.Builder
	b.WriteString(prior)
	b.WriteString("\nTool result (")
	b.WriteString(toolName)
	b.WriteString("):\n")
	b.WriteString(result)
	b.WriteString("\nAssistant:")
	return b.String()
}

func renderCatalog(catalog []core.ToolSpec) string {
	var b strings.Builder
	for _, spec := range catalog {
		b.WriteString(fmt.Sprintf("- %s: %s\n", spec.Name, spec.Description))
		params := append([]core.ParamSpec(nil), spec.Parameters...)
		sort.Slice(params, func(i, j int) bool {
			// Required params first, then name order, so the listing is stable.
			if params[i].Required != params[j].Required {
				return params[i].Required
			}
			return params[i].Name < params[j].Name
		})
		for _, p := range params {
			req := "optional"
			if p.Required {
				req = "required"
			}
			b.WriteString(fmt.Sprintf("    %s (%s, %s): %s\n", p.Name, p.Type, req, p.Description))
		}
	}
	return b.String()
}

func roleTag(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "Assistant"
	default:
		return role
	}
}

// WindowHistory keeps the most recent n turns.
func WindowHistory(history []core.Turn, n int) []core.Turn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
