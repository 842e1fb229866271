package tools

import "github.com/airpath/airpath/internal/core"

// Catalog returns the fixed tool manifest embedded verbatim in the system
// prompt. Names and parameters must stay in lockstep with the externally
// maintained manifest the remote agent uses; do not rename casually.
func (d *Dispatcher) Catalog() []core.ToolSpec {
	return []core.ToolSpec{
		{
			Name:        "search_airports",
			Description: "Search airports by ICAO code, name or city (substring match).",
			Parameters: []core.ParamSpec{
				{Name: "query", Type: "string", Description: "Search text", Required: true},
				{Name: "limit", Type: "number", Description: "Max results (default 10)"},
			},
		},
		{
			Name:        "get_airport_details",
			Description: "Get full details for one airport by exact ICAO code.",
			Parameters: []core.ParamSpec{
				{Name: "icao", Type: "string", Description: "Four-letter ICAO code", Required: true},
			},
		},
		{
			Name:        "get_airport_runways",
			Description: "List the runways of an airport.",
			Parameters: []core.ParamSpec{
				{Name: "icao", Type: "string", Description: "Four-letter ICAO code", Required: true},
			},
		},
		{
			Name:        "find_airports_near_route",
			Description: "Find airports within a corridor around the great-circle route between two airports, ranked by usefulness as en-route stops.",
			Parameters: []core.ParamSpec{
				{Name: "from_icao", Type: "string", Description: "Departure ICAO", Required: true},
				{Name: "to_icao", Type: "string", Description: "Destination ICAO", Required: true},
				{Name: "max_distance_nm", Type: "number", Description: "Corridor half-width in nm (default 50)"},
				{Name: "limit", Type: "number", Description: "Max results (default 100)"},
			},
		},
		{
			Name:        "find_airports_near_location",
			Description: "Find airports within a radius of a place (ICAO code or city/airport name), with customs notice requirements.",
			Parameters: []core.ParamSpec{
				{Name: "location", Type: "string", Description: "ICAO code or place name", Required: true},
				{Name: "max_distance_nm", Type: "number", Description: "Radius in nm (default 50)"},
				{Name: "max_hours_notice", Type: "number", Description: "Only airports reachable with at most this many hours of customs notice"},
				{Name: "limit", Type: "number", Description: "Max results (default 20)"},
			},
		},
		{
			Name:        "get_border_crossing_airports",
			Description: "List airports with customs/immigration (points of entry), optionally for one country.",
			Parameters: []core.ParamSpec{
				{Name: "country", Type: "string", Description: "ISO country code filter"},
			},
		},
		{
			Name:        "get_notification_for_airport",
			Description: "Get the advance-notice (PPR) requirement for an airport.",
			Parameters: []core.ParamSpec{
				{Name: "icao", Type: "string", Description: "Four-letter ICAO code", Required: true},
			},
		},
		{
			Name:        "find_airports_by_notification",
			Description: "Find airports by maximum customs notice hours, shortest notice first.",
			Parameters: []core.ParamSpec{
				{Name: "max_hours", Type: "number", Description: "Maximum notice hours"},
				{Name: "country", Type: "string", Description: "ISO country code filter"},
				{Name: "limit", Type: "number", Description: "Max results (default 20)"},
			},
		},
		{
			Name:        "list_rules_for_country",
			Description: "List the aviation rules recorded for one country.",
			Parameters: []core.ParamSpec{
				{Name: "country", Type: "string", Description: "ISO country code", Required: true},
			},
		},
		{
			Name:        "compare_rules_between_countries",
			Description: "Compare aviation rules between two countries, question by question.",
			Parameters: []core.ParamSpec{
				{Name: "country1", Type: "string", Description: "First ISO country code", Required: true},
				{Name: "country2", Type: "string", Description: "Second ISO country code", Required: true},
			},
		},
	}
}
