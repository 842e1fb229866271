package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/airpath/airpath/internal/core"
	"github.com/airpath/airpath/internal/geo"
	"github.com/airpath/airpath/internal/store"
)

const (
	defaultRadiusNM      = 50.0
	defaultLocationLimit = 20
)

type vicinityHit struct {
	airportSummary
	DistanceNM   float64 `json:"distance_nm"`
	HoursNotice  *int    `json:"hours_notice,omitempty"`
	NoticeSource string  `json:"notice_source,omitempty"` // "direct" or "parsed"
}

// resolveCenter turns a location query into a center point: exact ICAO
// first, else the first substring match on municipality then name.
func resolveCenter(ctx context.Context, db *store.DB, query string) (store.Airport, error) {
	if a, err := db.AirportByICAO(ctx, query); err == nil {
		if !a.HasCoords {
			return store.Airport{}, &core.NotFoundError{Kind: "location", Ref: a.ICAO + " (no coordinates)"}
		}
		return a, nil
	} else {
		var nf *core.NotFoundError
		if !errors.As(err, &nf) {
			return store.Airport{}, err
		}
	}

	matches, err := db.SearchAirports(ctx, query, 25)
	if err != nil {
		return store.Airport{}, err
	}
	q := strings.ToUpper(query)
	for _, a := range matches {
		if a.HasCoords && strings.Contains(strings.ToUpper(a.Municipality), q) {
			return a, nil
		}
	}
	for _, a := range matches {
		if a.HasCoords {
			return a, nil
		}
	}
	return store.Airport{}, &core.NotFoundError{Kind: "location", Ref: query}
}

func (d *Dispatcher) airportsNearLocation(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	query, ok := args.String("location", "location_query", "query", "place", "near")
	if !ok {
		return "", &core.ArgumentError{Tool: "find_airports_near_location", Param: "location"}
	}
	maxDist := args.FloatDefault(defaultRadiusNM, "max_distance_nm", "max_distance", "radius_nm", "radius")
	limit := args.IntDefault(defaultLocationLimit, "limit", "max_results")

	var maxNotice *int
	if n, ok := args.Int("max_hours_notice", "max_notice_hours", "max_hours"); ok {
		maxNotice = &n
	}

	center, err := resolveCenter(ctx, db, query)
	if err != nil {
		return "", err
	}

	all, err := db.AllWithCoordinates(ctx)
	if err != nil {
		return "", err
	}
	notices, err := db.NotificationSet(ctx)
	if err != nil {
		return "", err
	}

	var hits []vicinityHit
	for _, a := range all {
		if !a.Usable() {
			continue
		}
		dist := geo.Distance(center.Point(), a.Point())
		if dist > maxDist {
			continue
		}

		hit := vicinityHit{airportSummary: summarize(a), DistanceNM: round1(dist)}
		if n, ok := notices[strings.ToUpper(a.ICAO)]; ok {
			if n.HoursNotice != nil {
				hit.HoursNotice = n.HoursNotice
				hit.NoticeSource = "direct"
			} else if h, ok := store.ParseHoursNotice(n.Summary); ok {
				hit.HoursNotice = &h
				hit.NoticeSource = "parsed"
			}
		}
		// When the caller caps notice hours, airports with no resolvable
		// value are as useless as slow ones: drop both.
		if maxNotice != nil {
			if hit.HoursNotice == nil || *hit.HoursNotice > *maxNotice {
				continue
			}
		}
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].DistanceNM < hits[j].DistanceNM })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	b, err := json.Marshal(map[string]any{
		"center":   center.ICAO,
		"count":    len(hits),
		"airports": hits,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
