package tools

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/airpath/airpath/internal/core"
	"github.com/airpath/airpath/internal/geo"
)

const (
	defaultCorridorNM = 50.0
	defaultRouteLimit = 100
	routeEndBufferNM  = 10.0
)

// routeCandidate is one corridor hit with its ranking inputs.
type routeCandidate struct {
	airportSummary
	CrossTrackNM   float64 `json:"cross_track_nm"`
	AlongTrackNM   float64 `json:"along_track_nm"`
	HasProcedures  bool    `json:"has_procedures"`
	BorderCrossing bool    `json:"border_crossing"`

	sizeRank int
}

// facilityRank: both procedures and border-crossing (0) beat one of them (1)
// beat neither (2).
func (c routeCandidate) facilityRank() int {
	switch {
	case c.HasProcedures && c.BorderCrossing:
		return 0
	case c.HasProcedures || c.BorderCrossing:
		return 1
	default:
		return 2
	}
}

func (d *Dispatcher) airportsNearRoute(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	fromICAO, ok := args.String("from_icao", "from", "departure", "origin")
	if !ok {
		return "", &core.ArgumentError{Tool: "find_airports_near_route", Param: "from_icao"}
	}
	toICAO, ok := args.String("to_icao", "to", "destination", "arrival")
	if !ok {
		return "", &core.ArgumentError{Tool: "find_airports_near_route", Param: "to_icao"}
	}
	maxDist := args.FloatDefault(defaultCorridorNM, "max_distance_nm", "max_distance", "corridor_nm")
	limit := args.IntDefault(defaultRouteLimit, "limit", "max_results")

	from, err := db.AirportByICAO(ctx, fromICAO)
	if err != nil {
		return "", err
	}
	to, err := db.AirportByICAO(ctx, toICAO)
	if err != nil {
		return "", err
	}
	if !from.HasCoords {
		return "", &core.NotFoundError{Kind: "location", Ref: from.ICAO + " (no coordinates)"}
	}
	if !to.HasCoords {
		return "", &core.NotFoundError{Kind: "location", Ref: to.ICAO + " (no coordinates)"}
	}

	start, end := from.Point(), to.Point()
	routeLen := geo.Distance(start, end)

	all, err := db.AllWithCoordinates(ctx)
	if err != nil {
		return "", err
	}
	crossings, err := db.BorderCrossingSet(ctx)
	if err != nil {
		return "", err
	}
	procedures, err := db.ProcedureCountSet(ctx)
	if err != nil {
		return "", err
	}

	var hits []routeCandidate
	for _, a := range all {
		if a.ICAO == from.ICAO || a.ICAO == to.ICAO || !a.Usable() {
			continue
		}
		xt := geo.CrossTrack(a.Point(), start, end)
		if xt > maxDist {
			continue
		}
		at := geo.AlongTrack(a.Point(), start, end)
		if at < -routeEndBufferNM || at > routeLen+routeEndBufferNM {
			continue
		}
		icao := strings.ToUpper(a.ICAO)
		hits = append(hits, routeCandidate{
			airportSummary: summarize(a),
			CrossTrackNM:   round1(xt),
			AlongTrackNM:   round1(at),
			HasProcedures:  procedures[icao] > 0,
			BorderCrossing: crossings[icao],
			sizeRank:       a.SizeRank(),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if a, b := hits[i].facilityRank(), hits[j].facilityRank(); a != b {
			return a < b
		}
		if hits[i].sizeRank != hits[j].sizeRank {
			return hits[i].sizeRank < hits[j].sizeRank
		}
		return hits[i].AlongTrackNM < hits[j].AlongTrackNM
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	b, err := json.Marshal(map[string]any{
		"from":            from.ICAO,
		"to":              to.ICAO,
		"route_length_nm": round1(routeLen),
		"count":           len(hits),
		"airports":        hits,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
