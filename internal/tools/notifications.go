package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/airpath/airpath/internal/core"
	"github.com/airpath/airpath/internal/store"
)

const defaultNotificationLimit = 20

// icaoPrefixByCountry is the coarse ISO-country to ICAO-prefix mapping used
// when notification records carry no country of their own.
var icaoPrefixByCountry = map[string]string{
	"GB": "EG", "IE": "EI", "FR": "LF", "DE": "ED", "BE": "EB", "NL": "EH",
	"LU": "EL", "CH": "LS", "AT": "LO", "IT": "LI", "ES": "LE", "PT": "LP",
	"DK": "EK", "NO": "EN", "SE": "ES", "FI": "EF", "PL": "EP", "CZ": "LK",
	"US": "K", "CA": "C",
}

func countryToPrefix(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	if p, ok := icaoPrefixByCountry[c]; ok {
		return p
	}
	// Unknown codes pass through so callers can hand an ICAO prefix directly.
	return c
}

func (d *Dispatcher) notificationForAirport(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	icao, ok := args.String("icao", "airport", "code", "airport_icao")
	if !ok {
		return "", &core.ArgumentError{Tool: "get_notification_for_airport", Param: "icao"}
	}

	n, err := db.NotificationFor(ctx, icao)
	if err == nil {
		hours, resolved := n.EffectiveHoursNotice()
		out := map[string]any{"source": "notification_store", "notification": n}
		if resolved {
			out["effective_hours_notice"] = hours
			if n.HoursNotice == nil {
				out["source"] = "notification_store_parsed"
			}
		}
		b, merr := json.Marshal(out)
		if merr != nil {
			return "", merr
		}
		return string(b), nil
	}

	var nf *core.NotFoundError
	var unavailable *core.DataUnavailableError
	if !errors.As(err, &nf) && !errors.As(err, &unavailable) {
		return "", err
	}

	// The notification store has nothing (or is missing): fall back to the
	// airport's AIP customs/immigration free text and say where it came from.
	text, aerr := db.AIPField(ctx, icao, "customs", "immigration")
	if aerr != nil {
		return "", &core.NotFoundError{Kind: "notification", Ref: strings.ToUpper(icao)}
	}
	out := map[string]any{"source": "aip_text", "icao": strings.ToUpper(icao), "text": text}
	if h, ok := store.ParseHoursNotice(text); ok {
		out["effective_hours_notice"] = h
	}
	b, merr := json.Marshal(out)
	if merr != nil {
		return "", merr
	}
	return string(b), nil
}

type noticeHit struct {
	ICAO         string `json:"icao"`
	Name         string `json:"name,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	HoursNotice  int    `json:"hours_notice"`
	Summary      string `json:"summary,omitempty"`
}

func (d *Dispatcher) airportsByNotification(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	var maxHours *int
	if n, ok := args.Int("max_hours", "max_hours_notice", "hours"); ok {
		maxHours = &n
	}
	country, _ := args.String("country", "country_code")
	limit := args.IntDefault(defaultNotificationLimit, "limit", "max_results")

	prefix := ""
	if country != "" {
		prefix = countryToPrefix(country)
	}

	found, err := db.NotificationsByHours(ctx, maxHours, prefix, limit)
	if err != nil {
		return "", err
	}

	hits := make([]noticeHit, 0, len(found))
	for _, n := range found {
		hit := noticeHit{ICAO: n.ICAO, HoursNotice: *n.HoursNotice, Summary: n.Summary}
		// Best-effort display join; a notification for an airport missing
		// from the airports table still appears, just without a name.
		if a, aerr := db.AirportByICAO(ctx, n.ICAO); aerr == nil {
			hit.Name = a.Name
			hit.Municipality = a.Municipality
		}
		hits = append(hits, hit)
	}

	b, err := json.Marshal(map[string]any{"count": len(hits), "airports": hits})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
