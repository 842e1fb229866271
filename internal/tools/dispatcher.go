// Package tools implements the tool dispatch engine: it receives typed
// tool-call requests parsed out of model output and executes the matching
// handler against the bundled local stores. Every failure folds into an
// error result the model can read; nothing here panics across a call.
package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/airpath/airpath/internal/core"
	"github.com/airpath/airpath/internal/rules"
	"github.com/airpath/airpath/internal/store"
)

type handler func(ctx context.Context, args Args) (string, error)

// Dispatcher routes tool-call requests to handlers over the bundled stores.
// Either store may be nil when its file is missing; affected tools report
// the data as unavailable and the conversation continues.
type Dispatcher struct {
	db       *store.DB
	rules    *rules.Document
	log      *zap.Logger
	handlers map[string]handler
}

// New builds a Dispatcher. db and doc may be nil.
func New(db *store.DB, doc *rules.Document, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{db: db, rules: doc, log: log}
	d.handlers = map[string]handler{
		"search_airports":                 d.searchAirports,
		"get_airport_details":             d.airportDetails,
		"get_airport_runways":             d.airportRunways,
		"find_airports_near_route":        d.airportsNearRoute,
		"find_airports_near_location":     d.airportsNearLocation,
		"get_border_crossing_airports":    d.borderCrossingAirports,
		"get_notification_for_airport":    d.notificationForAirport,
		"find_airports_by_notification":   d.airportsByNotification,
		"list_rules_for_country":          d.rulesForCountry,
		"compare_rules_between_countries": d.compareRules,
	}
	return d
}

// Dispatch executes one request. Unknown names and handler failures return
// error results, never Go errors; the orchestrator narrates them back to
// the model.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.ToolCallRequest) core.ToolResult {
	h, ok := d.handlers[req.Name]
	if !ok {
		d.log.Warn("unknown tool requested", zap.String("tool", req.Name))
		return core.Failure(fmt.Sprintf("unknown tool %q", req.Name))
	}

	payload, err := h(ctx, Args(req.Arguments))
	if err != nil {
		d.log.Debug("tool failed", zap.String("tool", req.Name), zap.Error(err))
		return core.Failure(err.Error())
	}
	d.log.Debug("tool executed", zap.String("tool", req.Name), zap.Int("payload_len", len(payload)))
	return core.Success(payload)
}

// airports returns the airport store or a DataUnavailableError.
func (d *Dispatcher) airports() (*store.DB, error) {
	if d.db == nil {
		return nil, &core.DataUnavailableError{Store: "airports.db", Cause: fmt.Errorf("not opened")}
	}
	return d.db, nil
}

func (d *Dispatcher) rulesDoc() (*rules.Document, error) {
	if d.rules == nil {
		return nil, &core.DataUnavailableError{Store: "rules.json", Cause: fmt.Errorf("not loaded")}
	}
	return d.rules, nil
}
