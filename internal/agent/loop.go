// Package agent runs the bounded tool loop: prompt -> generate -> parse an
// embedded tool call -> dispatch -> feed the result back, at most a fixed
// number of rounds, emitting ChatEvents to the caller as it goes.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airpath/airpath/internal/config"
	"github.com/airpath/airpath/internal/core"
	"github.com/airpath/airpath/internal/tools"
)

// Orchestrator wires a generator and a tool dispatcher into one conversation
// turn. It owns no conversation state; callers keep history between turns.
type Orchestrator struct {
	Config *config.Config
	Gen    core.Generator
	Tools  core.ToolDispatcher
	Log    *zap.Logger
}

// TurnRequest is one user message plus the prior conversation window.
type TurnRequest struct {
	Message string
	History []core.Turn
}

// Turns collected during Run, for callers that persist history. Final entry
// is the assistant's closing message.
type TurnResult struct {
	Turns []core.Turn
}

// Run executes one conversation turn, delivering events to emit in order.
// The stream always terminates with Done or Error. Run returns the error
// behind an Error event so callers can branch without re-parsing event text.
func (o *Orchestrator) Run(ctx context.Context, req TurnRequest, emit func(core.ChatEvent)) (TurnResult, error) {
	var res TurnResult
	fail := func(err error) (TurnResult, error) {
		emit(core.ErrorEvent(userFacing(err)))
		return res, err
	}

	emit(core.Thinking("Thinking..."))

	if !o.Gen.Loaded() {
		emit(core.Thinking("Loading model..."))
		if err := o.Gen.Load(ctx, o.Config.ModelPath); err != nil {
			o.Log.Error("model load failed", zap.Error(err))
			return fail(err)
		}
	}

	history := WindowHistory(req.History, o.Config.HistoryWindow)
	prompt := BuildPrompt(o.Tools.Catalog(), history, req.Message)
	res.Turns = append(res.Turns, core.Turn{Role: "user", Content: req.Message})

	maxIters := o.Config.MaxToolIterations
	for iter := 0; ; iter++ {
		content, err := o.Gen.Generate(ctx, prompt)
		if err != nil {
			o.Log.Error("generation failed", zap.Error(err))
			return fail(err)
		}
		if iter == 0 {
			emit(core.Thinking("Analyzing..."))
		}

		call, cleaned, ok := FindToolCall(content)
		if !ok || iter >= maxIters {
			// Past the round cap any leftover call markup is dropped; the
			// pilot gets whatever prose the model produced.
			final := content
			if ok {
				o.Log.Warn("tool round cap reached, discarding call", zap.String("tool", call.Name), zap.Int("rounds", iter))
				final = cleaned
			}
			final = strings.TrimSpace(final)
			if final == "" {
				final = "I could not produce an answer for that. Try rephrasing the question."
			}
			emit(core.Message(final))
			res.Turns = append(res.Turns, core.Turn{Role: "assistant", Content: final})
			emit(core.Done(uuid.NewString()))
			return res, nil
		}

		call.ID = uuid.NewString()
		o.Log.Info("tool call", zap.String("tool", call.Name), zap.Int("round", iter+1))
		emit(core.ToolCallStart(call.Name, call.Arguments))

		// Prose around the call is progress commentary; surface it before
		// the result lands.
		if cleaned = strings.TrimSpace(cleaned); cleaned != "" {
			emit(core.Message(cleaned))
		}

		result := o.Tools.Dispatch(ctx, call)
		emit(core.ToolCallEnd(call.Name, result))

		payload := result.Payload
		if !result.OK {
			payload = "Error: " + result.Err
		}
		prompt = BuildFollowup(prompt, call.Name, tools.Truncate(payload, o.Config.ToolResultBudget))
	}
}

// userFacing folds internal errors into text fit for the event stream.
func userFacing(err error) string {
	var bu *core.BackendUnavailableError
	switch {
	case errors.As(err, &bu):
		return "No inference backend is available on this device: " + bu.Error()
	case errors.Is(err, core.ErrBusy):
		return "The model is busy with another request. Wait for it to finish and try again."
	case errors.Is(err, core.ErrNotLoaded):
		return "No model is loaded. Load a model and try again."
	case errors.Is(err, context.Canceled):
		return "The request was canceled."
	default:
		return "Something went wrong: " + err.Error()
	}
}
