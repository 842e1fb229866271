package tools

import (
	"context"
	"encoding/json"

	"github.com/airpath/airpath/internal/core"
	"github.com/airpath/airpath/internal/store"
)

const defaultSearchLimit = 10

// airportSummary is the compact shape returned by search results.
type airportSummary struct {
	ICAO         string `json:"icao"`
	Name         string `json:"name"`
	Municipality string `json:"municipality,omitempty"`
	Country      string `json:"country"`
	Type         string `json:"type"`
}

func summarize(a store.Airport) airportSummary {
	return airportSummary{
		ICAO:         a.ICAO,
		Name:         a.Name,
		Municipality: a.Municipality,
		Country:      a.Country,
		Type:         a.Type,
	}
}

func (d *Dispatcher) searchAirports(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	q, ok := args.String("query", "q", "search", "name")
	if !ok {
		return "", &core.ArgumentError{Tool: "search_airports", Param: "query"}
	}
	limit := args.IntDefault(defaultSearchLimit, "limit", "max_results")

	found, err := db.SearchAirports(ctx, q, limit)
	if err != nil {
		return "", err
	}
	out := make([]airportSummary, 0, len(found))
	for _, a := range found {
		out = append(out, summarize(a))
	}
	b, err := json.Marshal(map[string]any{"count": len(out), "airports": out})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Dispatcher) airportDetails(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	icao, ok := args.String("icao", "airport", "code", "airport_icao")
	if !ok {
		return "", &core.ArgumentError{Tool: "get_airport_details", Param: "icao"}
	}
	a, err := db.AirportByICAO(ctx, icao)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Dispatcher) airportRunways(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	icao, ok := args.String("icao", "airport", "code", "airport_icao")
	if !ok {
		return "", &core.ArgumentError{Tool: "get_airport_runways", Param: "icao"}
	}
	// Verify the airport exists so a bad code reads as not-found rather
	// than an empty runway list.
	if _, err := db.AirportByICAO(ctx, icao); err != nil {
		return "", err
	}
	rws, err := db.RunwaysFor(ctx, icao)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(map[string]any{"icao": icao, "count": len(rws), "runways": rws})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
