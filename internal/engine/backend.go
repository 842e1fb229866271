package engine

import "context"

// GenRequest is one generation turn handed to a backend.
type GenRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Backend is one local execution strategy for the model (accelerated or
// portable). A backend is created already holding a loaded model; Close
// releases everything it allocated.
type Backend interface {
	Name() string
	// Generate blocks until the model finishes the turn. onToken, when
	// non-nil, receives each text fragment as it is produced; the complete
	// text is returned either way. Re-invoking starts a fresh turn.
	Generate(ctx context.Context, req GenRequest, onToken func(string)) (string, error)
	Close() error
}

// BackendFactory probes one backend: it attempts to load the model and
// returns a ready Backend, or an error describing why this strategy is
// unavailable on the device. Factories are tried in priority order.
type BackendFactory struct {
	Name string
	New  func(ctx context.Context, modelPath string) (Backend, error)
}
