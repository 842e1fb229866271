package core

// EventKind discriminates ChatEvent.
type EventKind string

const (
	EventThinking      EventKind = "thinking"
	EventToolCallStart EventKind = "tool_call_start"
	EventToolCallEnd   EventKind = "tool_call_end"
	EventMessage       EventKind = "message"
	EventDone          EventKind = "done"
	EventError         EventKind = "error"
)

// ChatEvent is one element of the ordered per-turn event stream consumed by
// the presentation layer: Thinking* (ToolCallStart ToolCallEnd)* Message* (Done | Error).
type ChatEvent struct {
	Kind EventKind `json:"kind"`

	// Text carries thinking/progress text, message content, or the error.
	Text string `json:"text,omitempty"`

	// Tool fields are set on ToolCallStart/ToolCallEnd.
	Tool     string         `json:"tool,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	Result   *ToolResult    `json:"result,omitempty"`

	// SessionID is set on Done.
	SessionID string `json:"session_id,omitempty"`
}

func Thinking(text string) ChatEvent {
	return ChatEvent{Kind: EventThinking, Text: text}
}

func ToolCallStart(name string, args map[string]any) ChatEvent {
	return ChatEvent{Kind: EventToolCallStart, Tool: name, Args: args}
}

func ToolCallEnd(name string, result ToolResult) ChatEvent {
	return ChatEvent{Kind: EventToolCallEnd, Tool: name, Result: &result}
}

func Message(text string) ChatEvent {
	return ChatEvent{Kind: EventMessage, Text: text}
}

func Done(sessionID string) ChatEvent {
	return ChatEvent{Kind: EventDone, SessionID: sessionID}
}

func ErrorEvent(text string) ChatEvent {
	return ChatEvent{Kind: EventError, Text: text}
}
