package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/airpath/airpath/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	name     string
	reply    string
	genErr   error
	block    chan struct{} // if set, Generate waits until closed
	closed   bool
	closedMu sync.Mutex
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Generate(ctx context.Context, req GenRequest, onToken func(string)) (string, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.genErr != nil {
		return "", f.genErr
	}
	if onToken != nil {
		onToken(f.reply)
	}
	return f.reply, nil
}

func (f *fakeBackend) Close() error {
	f.closedMu.Lock()
	f.closed = true
	f.closedMu.Unlock()
	return nil
}

func factoryOK(name string, b *fakeBackend) BackendFactory {
	return BackendFactory{Name: name, New: func(ctx context.Context, modelPath string) (Backend, error) {
		return b, nil
	}}
}

func factoryFail(name string, err error) BackendFactory {
	return BackendFactory{Name: name, New: func(ctx context.Context, modelPath string) (Backend, error) {
		return nil, err
	}}
}

func TestLoadFallsThroughLadder(t *testing.T) {
	fb := &fakeBackend{name: "portable", reply: "ok"}
	e := New([]BackendFactory{
		factoryFail("accelerated", errors.New("no gpu")),
		factoryOK("portable", fb),
	}, Options{MaxTokens: 64}, zap.NewNop())

	require.NoError(t, e.Load(context.Background(), "model.gguf"))
	assert.True(t, e.Loaded())
	assert.Equal(t, "portable", e.BackendName())

	st, _ := e.State()
	assert.Equal(t, StateLoaded, st)
}

func TestLoadExhaustedReportsLastDiagnostic(t *testing.T) {
	e := New([]BackendFactory{
		factoryFail("accelerated", errors.New("no gpu")),
		factoryFail("portable", errors.New("bad model file")),
	}, Options{}, zap.NewNop())

	err := e.Load(context.Background(), "missing.gguf")
	require.Error(t, err)

	var bu *core.BackendUnavailableError
	require.ErrorAs(t, err, &bu)
	assert.Equal(t, "portable", bu.Backend)
	assert.Contains(t, bu.Error(), "bad model file")

	assert.False(t, e.Loaded())
	st, reason := e.State()
	assert.Equal(t, StateError, st)
	assert.NotEmpty(t, reason)
}

func TestLoadAfterErrorRetries(t *testing.T) {
	calls := 0
	e := New([]BackendFactory{{Name: "flaky", New: func(ctx context.Context, modelPath string) (Backend, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return &fakeBackend{name: "flaky", reply: "ok"}, nil
	}}}, Options{}, zap.NewNop())

	require.Error(t, e.Load(context.Background(), "m.gguf"))
	require.NoError(t, e.Load(context.Background(), "m.gguf"))
	assert.True(t, e.Loaded())
}

func TestLoadIdempotentWhenLoaded(t *testing.T) {
	calls := 0
	e := New([]BackendFactory{{Name: "once", New: func(ctx context.Context, modelPath string) (Backend, error) {
		calls++
		return &fakeBackend{name: "once"}, nil
	}}}, Options{}, zap.NewNop())

	require.NoError(t, e.Load(context.Background(), "m.gguf"))
	require.NoError(t, e.Load(context.Background(), "m.gguf"))
	assert.Equal(t, 1, calls)
}

func TestUnsupportedFailsFast(t *testing.T) {
	e := New(nil, Options{}, zap.NewNop())

	st, reason := e.State()
	assert.Equal(t, StateUnsupported, st)
	assert.NotEmpty(t, reason)

	err := e.Load(context.Background(), "m.gguf")
	var bu *core.BackendUnavailableError
	require.ErrorAs(t, err, &bu)

	// Unload must not clear the unsupported marker.
	e.Unload()
	st, _ = e.State()
	assert.Equal(t, StateUnsupported, st)
}

func TestLoadCanceledReleasesBackend(t *testing.T) {
	// The factory blocks like a real model load and finishes its backend
	// just as the caller gives up.
	fb := &fakeBackend{name: "slow"}
	e := New([]BackendFactory{{Name: "slow", New: func(ctx context.Context, modelPath string) (Backend, error) {
		<-ctx.Done()
		return fb, nil
	}}}, Options{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- e.Load(ctx, "m.gguf")
	}()
	require.Eventually(t, func() bool {
		st, _ := e.State()
		return st == StateLoading
	}, time.Second, 5*time.Millisecond)
	cancel()

	err := <-result
	require.ErrorIs(t, err, context.Canceled)

	assert.False(t, e.Loaded())
	st, _ := e.State()
	assert.Equal(t, StateError, st)

	fb.closedMu.Lock()
	assert.True(t, fb.closed)
	fb.closedMu.Unlock()

	_, err = e.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, core.ErrNotLoaded)
}

func TestGenerateCanceledMidTurn(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	fb := &fakeBackend{name: "p", reply: "never", block: block}
	e := New([]BackendFactory{factoryOK("p", fb)}, Options{}, zap.NewNop())
	require.NoError(t, e.Load(context.Background(), "m.gguf"))

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := e.Generate(ctx, "slow")
		result <- err
	}()
	require.Eventually(t, func() bool {
		st, _ := e.State()
		return st == StateGenerating
	}, time.Second, 5*time.Millisecond)
	cancel()

	err := <-result
	require.ErrorIs(t, err, context.Canceled)
	var ge *core.GenerationError
	assert.ErrorAs(t, err, &ge)

	// The model stays loaded; the next turn works.
	st, _ := e.State()
	assert.Equal(t, StateLoaded, st)
}

func TestGenerateRequiresLoad(t *testing.T) {
	e := New([]BackendFactory{factoryOK("p", &fakeBackend{})}, Options{}, zap.NewNop())

	_, err := e.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrNotLoaded)
}

func TestGenerateBusyRejected(t *testing.T) {
	block := make(chan struct{})
	fb := &fakeBackend{name: "p", reply: "done", block: block}
	e := New([]BackendFactory{factoryOK("p", fb)}, Options{}, zap.NewNop())
	require.NoError(t, e.Load(context.Background(), "m.gguf"))

	started := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		close(started)
		_, err := e.Generate(context.Background(), "slow")
		result <- err
	}()
	<-started
	// Wait for the first call to take the generating slot.
	require.Eventually(t, func() bool {
		st, _ := e.State()
		return st == StateGenerating
	}, time.Second, 5*time.Millisecond)

	_, err := e.Generate(context.Background(), "second")
	assert.ErrorIs(t, err, core.ErrBusy)

	close(block)
	require.NoError(t, <-result)

	st, _ := e.State()
	assert.Equal(t, StateLoaded, st)
}

func TestGenerateWrapsBackendFailure(t *testing.T) {
	fb := &fakeBackend{name: "p", genErr: errors.New("oom")}
	e := New([]BackendFactory{factoryOK("p", fb)}, Options{}, zap.NewNop())
	require.NoError(t, e.Load(context.Background(), "m.gguf"))

	_, err := e.Generate(context.Background(), "hi")
	var ge *core.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "p", ge.Backend)

	// A failed turn leaves the model loaded.
	assert.True(t, e.Loaded())
}

func TestGenerateStreamForwardsTokens(t *testing.T) {
	fb := &fakeBackend{name: "p", reply: "hello world"}
	e := New([]BackendFactory{factoryOK("p", fb)}, Options{}, zap.NewNop())
	require.NoError(t, e.Load(context.Background(), "m.gguf"))

	var got []string
	text, err := e.GenerateStream(context.Background(), "hi", func(tok string) {
		got = append(got, tok)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, []string{"hello world"}, got)
}

func TestUnloadIdempotentAndClosesBackend(t *testing.T) {
	fb := &fakeBackend{name: "p"}
	e := New([]BackendFactory{factoryOK("p", fb)}, Options{}, zap.NewNop())
	require.NoError(t, e.Load(context.Background(), "m.gguf"))

	e.Unload()
	e.Unload()

	fb.closedMu.Lock()
	assert.True(t, fb.closed)
	fb.closedMu.Unlock()

	assert.False(t, e.Loaded())
	_, err := e.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, core.ErrNotLoaded)
}

func TestConcurrentLoadsCollapse(t *testing.T) {
	var calls int
	var mu sync.Mutex
	e := New([]BackendFactory{{Name: "slow", New: func(ctx context.Context, modelPath string) (Backend, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		return &fakeBackend{name: "slow"}, nil
	}}}, Options{}, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.Load(context.Background(), "m.gguf")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}
