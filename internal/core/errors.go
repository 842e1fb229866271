package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inference engine lifecycle.
var (
	// ErrNotLoaded is returned by generate when no model is loaded.
	ErrNotLoaded = errors.New("model not loaded")
	// ErrBusy is returned when a load or generate is already in flight.
	ErrBusy = errors.New("engine busy")
)

// ArgumentError reports a missing or invalid tool argument.
type ArgumentError struct {
	Tool  string
	Param string
	Msg   string
}

func (e *ArgumentError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("tool %s: argument %s: %s", e.Tool, e.Param, e.Msg)
	}
	return fmt.Sprintf("tool %s: missing required argument %q", e.Tool, e.Param)
}

// NotFoundError reports an unresolvable ICAO, location or country.
type NotFoundError struct {
	Kind string // "airport", "location", "country", "tool"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Ref)
}

// BackendUnavailableError means no inference backend could load the model.
// Diag carries the last attempted backend's diagnostic.
type BackendUnavailableError struct {
	Backend string
	Diag    error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("no inference backend available (last tried %s): %v", e.Backend, e.Diag)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Diag }

// GenerationError means the model failed mid-turn.
type GenerationError struct {
	Backend string
	Cause   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on %s: %v", e.Backend, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// DataUnavailableError means a required bundled store is missing or unreadable.
// Per-tool recoverable; never fatal at startup.
type DataUnavailableError struct {
	Store string
	Cause error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data store %s unavailable: %v", e.Store, e.Cause)
}

func (e *DataUnavailableError) Unwrap() error { return e.Cause }
