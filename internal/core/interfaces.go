package core

import (
	"context"
)

// Generator abstracts the inference engine for the orchestrator: a blocking
// prompt-in/text-out call plus lifecycle hooks. Implementations serialize
// calls internally; Generate returns ErrNotLoaded when no model is loaded
// and ErrBusy when another turn holds the engine.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Loaded() bool
	Load(ctx context.Context, modelPath string) error
}

// ToolDispatcher executes one parsed tool call. Failures are folded into the
// returned ToolResult; Dispatch never returns an error for tool-level faults.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, req ToolCallRequest) ToolResult
	Catalog() []ToolSpec
}
