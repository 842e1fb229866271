package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAirportsNearRouteCorridor(t *testing.T) {
	d := newDispatcher(t)

	m := decode(t, call(t, d, "find_airports_near_route", map[string]any{
		"from_icao":       "EGLL",
		"to_icao":         "LFPG",
		"max_distance_nm": 30,
	}))

	hits := m["airports"].([]any)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		hit := h.(map[string]any)
		icao := hit["icao"].(string)
		// Never the endpoints, never closed fields or heliports.
		assert.NotEqual(t, "EGLL", icao)
		assert.NotEqual(t, "LFPG", icao)
		assert.NotEqual(t, "EGXX", icao)
		assert.NotEqual(t, "LFHE", icao)
		assert.LessOrEqual(t, hit["cross_track_nm"].(float64), 30.0)
	}
}

func TestAirportsNearRouteRanking(t *testing.T) {
	d := newDispatcher(t)

	m := decode(t, call(t, d, "find_airports_near_route", map[string]any{
		"from": "EGLL", "to": "LFPG",
	}))
	hits := m["airports"].([]any)
	require.GreaterOrEqual(t, len(hits), 4)

	// Le Touquet has procedures and is a point of entry; it outranks
	// everything else in the corridor.
	first := hits[0].(map[string]any)
	assert.Equal(t, "LFAT", first["icao"])
	assert.True(t, first["has_procedures"].(bool))
	assert.True(t, first["border_crossing"].(bool))

	// Facility rank is monotonically non-increasing down the list.
	rank := func(h map[string]any) int {
		p, b := h["has_procedures"].(bool), h["border_crossing"].(bool)
		switch {
		case p && b:
			return 0
		case p || b:
			return 1
		default:
			return 2
		}
	}
	prev := 0
	for _, h := range hits {
		r := rank(h.(map[string]any))
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
}

func TestAirportsNearRouteEndBuffer(t *testing.T) {
	d := newDispatcher(t)

	m := decode(t, call(t, d, "find_airports_near_route", map[string]any{
		"from_icao": "EGLL", "to_icao": "LFPG",
	}))
	hits := m["airports"].([]any)

	// Elstree sits just behind the departure; Toussus just past the
	// destination. Both are inside the 10 nm end buffers.
	icaos := make(map[string]bool)
	routeLen := m["route_length_nm"].(float64)
	for _, h := range hits {
		hit := h.(map[string]any)
		icaos[hit["icao"].(string)] = true
		at := hit["along_track_nm"].(float64)
		assert.GreaterOrEqual(t, at, -10.0)
		assert.LessOrEqual(t, at, routeLen+10.0)
	}
	assert.True(t, icaos["EGTR"], "expected Elstree inside the start buffer")
	assert.True(t, icaos["LFPN"], "expected Toussus inside the end buffer")
}

func TestAirportsNearRouteErrors(t *testing.T) {
	d := newDispatcher(t)

	res := call(t, d, "find_airports_near_route", map[string]any{"from_icao": "EGLL"})
	assert.False(t, res.OK)
	assert.Contains(t, res.Err, "to_icao")

	res = call(t, d, "find_airports_near_route", map[string]any{
		"from_icao": "EGLL", "to_icao": "ZZZZ",
	})
	assert.False(t, res.OK)

	// An airport without coordinates cannot anchor a route.
	res = call(t, d, "find_airports_near_route", map[string]any{
		"from_icao": "LFXX", "to_icao": "LFPG",
	})
	assert.False(t, res.OK)
}
