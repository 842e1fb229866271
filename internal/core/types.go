package core

// ToolCallRequest is a single tool invocation parsed out of model output.
// Arguments are untyped until a handler coerces them.
type ToolCallRequest struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of dispatching one ToolCallRequest. Exactly one
// of Payload/Err is meaningful; immutable once produced.
type ToolResult struct {
	OK      bool   `json:"ok"`
	Payload string `json:"payload,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Success wraps a serialized payload (JSON document or pre-formatted text).
func Success(payload string) ToolResult {
	return ToolResult{OK: true, Payload: payload}
}

// Failure wraps an error message the model can read and recover from.
func Failure(message string) ToolResult {
	return ToolResult{OK: false, Err: message}
}

// ToolSpec describes one tool in the catalog embedded in the system prompt.
// The set of specs must match the externally maintained manifest.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamSpec `json:"parameters,omitempty"`
}

// ParamSpec is a parameter hint for the model (name, type, requiredness).
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number" or "boolean"
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Turn is one prior exchange included in the prompt history window.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
