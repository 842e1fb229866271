package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/airpath/airpath/internal/config"
	"github.com/airpath/airpath/internal/core"
)

type fakeGen struct {
	replies  []string
	loaded   bool
	loadErr  error
	genErr   error
	genCalls int
}

func (g *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	if g.genErr != nil {
		return "", g.genErr
	}
	i := g.genCalls
	g.genCalls++
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return g.replies[len(g.replies)-1], nil
}

func (g *fakeGen) Loaded() bool { return g.loaded }

func (g *fakeGen) Load(ctx context.Context, modelPath string) error {
	if g.loadErr != nil {
		return g.loadErr
	}
	g.loaded = true
	return nil
}

type fakeTools struct {
	calls   []core.ToolCallRequest
	results map[string]core.ToolResult
}

func (f *fakeTools) Dispatch(ctx context.Context, req core.ToolCallRequest) core.ToolResult {
	f.calls = append(f.calls, req)
	if r, ok := f.results[req.Name]; ok {
		return r
	}
	return core.Success(`{"ok":true}`)
}

func (f *fakeTools) Catalog() []core.ToolSpec {
	return []core.ToolSpec{{Name: "airport_details", Description: "airport record"}}
}

func testOrchestrator(gen *fakeGen, tls *fakeTools) *Orchestrator {
	return &Orchestrator{
		Config: &config.Config{
			ModelPath:         "model.gguf",
			MaxToolIterations: 5,
			ToolResultBudget:  2000,
			HistoryWindow:     6,
		},
		Gen:   gen,
		Tools: tls,
		Log:   zap.NewNop(),
	}
}

func collect(t *testing.T, o *Orchestrator, msg string) ([]core.ChatEvent, TurnResult, error) {
	t.Helper()
	var events []core.ChatEvent
	res, err := o.Run(context.Background(), TurnRequest{Message: msg}, func(ev core.ChatEvent) {
		events = append(events, ev)
	})
	return events, res, err
}

func kinds(events []core.ChatEvent) []core.EventKind {
	out := make([]core.EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func toolCallJSON(t *testing.T, name string, args map[string]any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	require.NoError(t, err)
	return string(b)
}

func TestRunPlainAnswer(t *testing.T) {
	gen := &fakeGen{loaded: true, replies: []string{"Shoreham is a small airfield on the south coast."}}
	tls := &fakeTools{}

	events, res, err := collect(t, testOrchestrator(gen, tls), "tell me about Shoreham")
	require.NoError(t, err)

	assert.Equal(t, []core.EventKind{core.EventThinking, core.EventThinking, core.EventMessage, core.EventDone}, kinds(events))
	assert.Empty(t, tls.calls)
	assert.NotEmpty(t, events[3].SessionID)

	require.Len(t, res.Turns, 2)
	assert.Equal(t, "user", res.Turns[0].Role)
	assert.Equal(t, "assistant", res.Turns[1].Role)
}

func TestRunSingleToolRound(t *testing.T) {
	gen := &fakeGen{loaded: true, replies: []string{
		toolCallJSON(t, "airport_details", map[string]any{"icao": "EGKA"}),
		"Shoreham (EGKA) has a hard runway and customs on request.",
	}}
	tls := &fakeTools{results: map[string]core.ToolResult{
		"airport_details": core.Success(`{"icao":"EGKA"}`),
	}}

	events, _, err := collect(t, testOrchestrator(gen, tls), "details for EGKA")
	require.NoError(t, err)

	assert.Equal(t, []core.EventKind{
		core.EventThinking,
		core.EventThinking,
		core.EventToolCallStart,
		core.EventToolCallEnd,
		core.EventMessage,
		core.EventDone,
	}, kinds(events))

	require.Len(t, tls.calls, 1)
	assert.Equal(t, "airport_details", tls.calls[0].Name)
	assert.NotEmpty(t, tls.calls[0].ID)
	assert.Equal(t, "EGKA", tls.calls[0].Arguments["icao"])

	require.NotNil(t, events[3].Result)
	assert.True(t, events[3].Result.OK)
}

func TestRunCommentaryAroundCall(t *testing.T) {
	gen := &fakeGen{loaded: true, replies: []string{
		"Let me check.\n" + toolCallJSON(t, "airport_details", map[string]any{"icao": "EGKA"}),
		"Done.",
	}}
	tls := &fakeTools{}

	events, _, err := collect(t, testOrchestrator(gen, tls), "EGKA?")
	require.NoError(t, err)

	// The prose around the call surfaces as a message between start and end.
	assert.Equal(t, []core.EventKind{
		core.EventThinking,
		core.EventThinking,
		core.EventToolCallStart,
		core.EventMessage,
		core.EventToolCallEnd,
		core.EventMessage,
		core.EventDone,
	}, kinds(events))
	assert.Equal(t, "Let me check.", events[3].Text)
}

func TestRunToolRoundCap(t *testing.T) {
	// A model that always asks for another tool must be cut off after the cap.
	gen := &fakeGen{loaded: true, replies: []string{
		toolCallJSON(t, "airport_details", map[string]any{"icao": "EGKA"}),
	}}
	tls := &fakeTools{}

	events, _, err := collect(t, testOrchestrator(gen, tls), "loop forever")
	require.NoError(t, err)

	assert.Len(t, tls.calls, 5)
	assert.Equal(t, 6, gen.genCalls)

	last := events[len(events)-1]
	assert.Equal(t, core.EventDone, last.Kind)
	// The leftover call markup never reaches the pilot.
	for _, ev := range events {
		if ev.Kind == core.EventMessage {
			assert.NotContains(t, ev.Text, `"name"`)
		}
	}
}

func TestRunLoadsModelWhenNeeded(t *testing.T) {
	gen := &fakeGen{replies: []string{"hello"}}
	tls := &fakeTools{}

	events, _, err := collect(t, testOrchestrator(gen, tls), "hi")
	require.NoError(t, err)
	assert.True(t, gen.loaded)
	assert.Equal(t, core.EventThinking, events[1].Kind)
	assert.Contains(t, events[1].Text, "Loading")
}

func TestRunLoadFailure(t *testing.T) {
	loadErr := &core.BackendUnavailableError{Backend: "llama-portable", Diag: errors.New("bad model file")}
	gen := &fakeGen{loadErr: loadErr}

	events, _, err := collect(t, testOrchestrator(gen, &fakeTools{}), "hi")
	require.Error(t, err)

	var bu *core.BackendUnavailableError
	assert.ErrorAs(t, err, &bu)

	last := events[len(events)-1]
	assert.Equal(t, core.EventError, last.Kind)
	assert.Contains(t, last.Text, "inference backend")
}

func TestRunGenerateFailure(t *testing.T) {
	gen := &fakeGen{loaded: true, genErr: fmt.Errorf("wrap: %w", core.ErrBusy)}

	events, _, err := collect(t, testOrchestrator(gen, &fakeTools{}), "hi")
	require.ErrorIs(t, err, core.ErrBusy)

	last := events[len(events)-1]
	assert.Equal(t, core.EventError, last.Kind)
	assert.Contains(t, last.Text, "busy")
}

func TestRunToolFailureFedBack(t *testing.T) {
	gen := &fakeGen{loaded: true, replies: []string{
		toolCallJSON(t, "airport_details", map[string]any{"icao": "ZZZZ"}),
		"I couldn't find that airport.",
	}}
	tls := &fakeTools{results: map[string]core.ToolResult{
		"airport_details": core.Failure("airport ZZZZ: not found"),
	}}

	events, _, err := collect(t, testOrchestrator(gen, tls), "ZZZZ?")
	require.NoError(t, err)

	// Failed tool calls still end with a normal message, not an error event.
	last := events[len(events)-1]
	assert.Equal(t, core.EventDone, last.Kind)

	var end *core.ChatEvent
	for i := range events {
		if events[i].Kind == core.EventToolCallEnd {
			end = &events[i]
		}
	}
	require.NotNil(t, end)
	assert.False(t, end.Result.OK)
	assert.Contains(t, end.Result.Err, "not found")
}
