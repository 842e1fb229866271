// Package engine owns the local model lifecycle: a mutex-guarded state
// machine (unloaded -> loading -> loaded -> generating) over an ordered
// ladder of backend factories. The accelerated backend is probed first and
// the portable one is the fallback, so devices without GPU support degrade
// instead of failing hard.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/airpath/airpath/internal/core"
)

// State is the observable engine lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateGenerating
	StateError
	StateUnsupported
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateGenerating:
		return "generating"
	case StateError:
		return "error"
	case StateUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Defaults applied to generation requests.
type Options struct {
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Engine is the single shared inference resource. All mutation goes through
// Load/Generate/Unload; at most one load or one generate is in flight.
type Engine struct {
	mu          sync.Mutex
	state       State
	backend     Backend
	backendName string
	reason      string // set for StateError / StateUnsupported

	factories []BackendFactory
	opts      Options
	log       *zap.Logger

	loads singleflight.Group
}

// New builds an engine over the factory ladder. An empty ladder means the
// device cannot run local inference at all; the engine reports Unsupported
// and every load fails fast.
func New(factories []BackendFactory, opts Options, log *zap.Logger) *Engine {
	e := &Engine{factories: factories, opts: opts, log: log}
	if len(factories) == 0 {
		e.state = StateUnsupported
		e.reason = "no inference backends configured"
	}
	return e
}

// State returns the current lifecycle state and its diagnostic reason (set
// for error/unsupported).
func (e *Engine) State() (State, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.reason
}

// Loaded reports whether a model is ready to generate.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateLoaded || e.state == StateGenerating
}

// BackendName returns the name of the backend currently holding the model.
func (e *Engine) BackendName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backendName
}

// Load walks the backend ladder until one accepts the model. Loading blocks
// for seconds; callers must not invoke it from a latency-sensitive path.
// Concurrent loads collapse into the one in flight and share its outcome.
// On exhaustion the engine lands in StateError and the last backend's
// diagnostic is surfaced.
func (e *Engine) Load(ctx context.Context, modelPath string) error {
	e.mu.Lock()
	switch e.state {
	case StateUnsupported:
		reason := e.reason
		e.mu.Unlock()
		return &core.BackendUnavailableError{Backend: "none", Diag: fmt.Errorf("%s", reason)}
	case StateLoaded, StateGenerating:
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	_, err, _ := e.loads.Do("load", func() (any, error) {
		return nil, e.loadLocked(ctx, modelPath)
	})
	return err
}

func (e *Engine) loadLocked(ctx context.Context, modelPath string) error {
	e.mu.Lock()
	if e.state == StateLoaded || e.state == StateGenerating {
		e.mu.Unlock()
		return nil
	}
	e.state = StateLoading
	e.mu.Unlock()

	var lastErr error
	lastName := "none"
	for _, f := range e.factories {
		if err := ctx.Err(); err != nil {
			e.fail(err)
			return err
		}
		e.log.Info("trying inference backend", zap.String("backend", f.Name), zap.String("model", modelPath))
		b, err := f.New(ctx, modelPath)
		if err != nil {
			e.log.Warn("backend unavailable", zap.String("backend", f.Name), zap.Error(err))
			lastErr, lastName = err, f.Name
			continue
		}
		// A cancellation racing the factory must not leak the backend it
		// finished creating.
		if cerr := ctx.Err(); cerr != nil {
			if closeErr := b.Close(); closeErr != nil {
				e.log.Warn("backend close failed", zap.String("backend", f.Name), zap.Error(closeErr))
			}
			e.fail(cerr)
			return cerr
		}
		e.mu.Lock()
		e.backend = b
		e.backendName = f.Name
		e.state = StateLoaded
		e.reason = ""
		e.mu.Unlock()
		e.log.Info("model loaded", zap.String("backend", f.Name))
		return nil
	}

	err := &core.BackendUnavailableError{Backend: lastName, Diag: lastErr}
	e.fail(err)
	return err
}

func (e *Engine) fail(err error) {
	e.mu.Lock()
	e.state = StateError
	e.reason = err.Error()
	e.mu.Unlock()
}

// Generate blocks until the model completes the turn.
func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	return e.generate(ctx, prompt, nil)
}

// GenerateStream delivers text fragments to onToken as they are produced
// and returns the complete text. The fragment sequence is finite and not
// restartable.
func (e *Engine) GenerateStream(ctx context.Context, prompt string, onToken func(string)) (string, error) {
	return e.generate(ctx, prompt, onToken)
}

func (e *Engine) generate(ctx context.Context, prompt string, onToken func(string)) (string, error) {
	e.mu.Lock()
	switch e.state {
	case StateGenerating:
		e.mu.Unlock()
		return "", core.ErrBusy
	case StateLoaded:
	default:
		e.mu.Unlock()
		return "", core.ErrNotLoaded
	}
	b := e.backend
	name := e.backendName
	e.state = StateGenerating
	e.mu.Unlock()

	text, err := b.Generate(ctx, GenRequest{
		Prompt:      prompt,
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
		Stop:        e.opts.Stop,
	}, onToken)

	e.mu.Lock()
	// Unload during generation wins; do not resurrect the loaded state.
	if e.state == StateGenerating {
		e.state = StateLoaded
	}
	e.mu.Unlock()

	if err != nil {
		return "", &core.GenerationError{Backend: name, Cause: err}
	}
	return text, nil
}

// Unload releases the backend. Idempotent; always succeeds.
func (e *Engine) Unload() {
	e.mu.Lock()
	b := e.backend
	e.backend = nil
	e.backendName = ""
	if e.state != StateUnsupported {
		e.state = StateUnloaded
		e.reason = ""
	}
	e.mu.Unlock()

	if b != nil {
		if err := b.Close(); err != nil {
			e.log.Warn("backend close failed", zap.Error(err))
		}
	}
}
