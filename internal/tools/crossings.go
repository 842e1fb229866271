package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/airpath/airpath/internal/core"
)

// borderCrossingAirports returns a human-readable enumeration rather than
// raw JSON: small local models misread structured crossing data and invent
// airports, so the payload is pre-formatted prose with an explicit count.
func (d *Dispatcher) borderCrossingAirports(ctx context.Context, args Args) (string, error) {
	db, err := d.airports()
	if err != nil {
		return "", err
	}
	country, _ := args.String("country", "country_code", "country_iso")

	found, err := db.BorderCrossingAirports(ctx, country)
	if err != nil {
		return "", err
	}
	if len(found) == 0 && country != "" {
		return "", &core.NotFoundError{Kind: "country", Ref: strings.ToUpper(country)}
	}

	var b strings.Builder
	if country != "" {
		fmt.Fprintf(&b, "%d border crossing (point of entry) airports in %s:\n", len(found), strings.ToUpper(country))
	} else {
		fmt.Fprintf(&b, "%d border crossing (point of entry) airports:\n", len(found))
	}
	for _, a := range found {
		fmt.Fprintf(&b, "- %s: %s", a.ICAO, a.Name)
		if a.Municipality != "" {
			fmt.Fprintf(&b, ", %s", a.Municipality)
		}
		fmt.Fprintf(&b, " (%s)\n", a.Country)
	}
	fmt.Fprintf(&b, "Total: %d", len(found))
	return b.String(), nil
}
