package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/airpath/airpath/internal/core"
	"github.com/airpath/airpath/internal/geo"
)

// Airport is one row of the bundled airports table. Coordinates may be
// absent for some entries; HasCoordinates gates geometric queries.
type Airport struct {
	ICAO         string  `json:"icao"`
	IATA         string  `json:"iata,omitempty"`
	Name         string  `json:"name"`
	Municipality string  `json:"municipality,omitempty"`
	Country      string  `json:"country"`
	Region       string  `json:"region,omitempty"`
	Type         string  `json:"type"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	HasCoords    bool    `json:"-"`
	ElevationFt  *int    `json:"elevation_ft,omitempty"`
}

// Point returns the airport position for geodesic math.
func (a Airport) Point() geo.Point {
	return geo.Point{Lat: a.Lat, Lon: a.Lon}
}

// Usable reports whether the airport should appear in proximity results.
// Closed fields and heliports are never useful corridor or vicinity stops.
func (a Airport) Usable() bool {
	t := strings.ToLower(a.Type)
	return t != "closed" && t != "heliport"
}

// SizeRank orders airport classifications for corridor ranking:
// large (0) before medium (1) before small (2) before everything else (3).
func (a Airport) SizeRank() int {
	switch strings.ToLower(a.Type) {
	case "large_airport":
		return 0
	case "medium_airport":
		return 1
	case "small_airport":
		return 2
	default:
		return 3
	}
}

// Runway is one runway of an airport, identified by its two ends.
type Runway struct {
	AirportICAO string `json:"airport_icao"`
	LEIdent     string `json:"le_ident"`
	HEIdent     string `json:"he_ident"`
	LengthFt    *int   `json:"length_ft,omitempty"`
	WidthFt     *int   `json:"width_ft,omitempty"`
	Surface     string `json:"surface,omitempty"`
	Lighted     bool   `json:"lighted"`
}

const airportCols = "icao, iata, name, municipality, country, region, type, lat, lon, elevation_ft"

func scanAirport(scan func(...any) error) (Airport, error) {
	var a Airport
	var iata, municipality, region sql.NullString
	var lat, lon sql.NullFloat64
	var elev sql.NullInt64
	if err := scan(&a.ICAO, &iata, &a.Name, &municipality, &a.Country, &region, &a.Type, &lat, &lon, &elev); err != nil {
		return Airport{}, err
	}
	a.IATA = iata.String
	a.Municipality = municipality.String
	a.Region = region.String
	if lat.Valid && lon.Valid {
		a.Lat, a.Lon, a.HasCoords = lat.Float64, lon.Float64, true
	}
	if elev.Valid {
		v := int(elev.Int64)
		a.ElevationFt = &v
	}
	return a, nil
}

// SearchAirports substring-matches q against ICAO, name and municipality,
// case-insensitive, capped at limit.
func (s *DB) SearchAirports(ctx context.Context, q string, limit int) ([]Airport, error) {
	pat := "%" + strings.ToUpper(strings.TrimSpace(q)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+airportCols+` FROM airports
		WHERE UPPER(icao) LIKE ? OR UPPER(name) LIKE ? OR UPPER(municipality) LIKE ?
		ORDER BY icao LIMIT ?`, pat, pat, pat, limit)
	if err != nil {
		return nil, fmt.Errorf("search airports: %w", err)
	}
	defer rows.Close()

	var out []Airport
	for rows.Next() {
		a, err := scanAirport(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AirportByICAO looks up one airport by exact ICAO code (case-insensitive).
// Returns a NotFoundError when absent.
func (s *DB) AirportByICAO(ctx context.Context, icao string) (Airport, error) {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+airportCols+` FROM airports WHERE UPPER(icao) = ?`, icao)
	a, err := scanAirport(row.Scan)
	if err == sql.ErrNoRows {
		return Airport{}, &core.NotFoundError{Kind: "airport", Ref: icao}
	}
	if err != nil {
		return Airport{}, fmt.Errorf("airport %s: %w", icao, err)
	}
	return a, nil
}

// AllWithCoordinates returns every airport carrying a position, for the
// corridor and vicinity scans. The bundled store is small enough that a
// full scan per query is cheaper than maintaining a spatial index.
func (s *DB) AllWithCoordinates(ctx context.Context) ([]Airport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+airportCols+` FROM airports
		WHERE lat IS NOT NULL AND lon IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("scan airports: %w", err)
	}
	defer rows.Close()

	var out []Airport
	for rows.Next() {
		a, err := scanAirport(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RunwaysFor returns the runways of one airport.
func (s *DB) RunwaysFor(ctx context.Context, icao string) ([]Runway, error) {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	rows, err := s.db.QueryContext(ctx, `
		SELECT airport_icao, le_ident, he_ident, length_ft, width_ft, surface, lighted
		FROM runways WHERE UPPER(airport_icao) = ? ORDER BY le_ident`, icao)
	if err != nil {
		return nil, fmt.Errorf("runways %s: %w", icao, err)
	}
	defer rows.Close()

	var out []Runway
	for rows.Next() {
		var r Runway
		var length, width sql.NullInt64
		var surface sql.NullString
		var lighted sql.NullInt64
		if err := rows.Scan(&r.AirportICAO, &r.LEIdent, &r.HEIdent, &length, &width, &surface, &lighted); err != nil {
			return nil, err
		}
		if length.Valid {
			v := int(length.Int64)
			r.LengthFt = &v
		}
		if width.Valid {
			v := int(width.Int64)
			r.WidthFt = &v
		}
		r.Surface = surface.String
		r.Lighted = lighted.Int64 != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// BorderCrossingSet returns the set of ICAO codes flagged as border-crossing
// (point of entry) airports.
func (s *DB) BorderCrossingSet(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT icao FROM border_crossings`)
	if err != nil {
		return nil, fmt.Errorf("border crossings: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var icao string
		if err := rows.Scan(&icao); err != nil {
			return nil, err
		}
		set[strings.ToUpper(icao)] = true
	}
	return set, rows.Err()
}

// BorderCrossingAirports joins the crossing association to airports,
// optionally filtered by country ISO code.
func (s *DB) BorderCrossingAirports(ctx context.Context, country string) ([]Airport, error) {
	q := `
		SELECT ` + prefixCols("a") + ` FROM airports a
		JOIN border_crossings b ON UPPER(b.icao) = UPPER(a.icao)`
	args := []any{}
	if country != "" {
		q += ` WHERE UPPER(b.country_iso) = ?`
		args = append(args, strings.ToUpper(strings.TrimSpace(country)))
	}
	q += ` ORDER BY a.country, a.icao`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("border crossing airports: %w", err)
	}
	defer rows.Close()

	var out []Airport
	seen := make(map[string]bool)
	for rows.Next() {
		a, err := scanAirport(rows.Scan)
		if err != nil {
			return nil, err
		}
		if seen[a.ICAO] {
			continue
		}
		seen[a.ICAO] = true
		out = append(out, a)
	}
	return out, rows.Err()
}

// ProcedureCountSet returns ICAO -> instrument procedure count, used for
// corridor ranking.
func (s *DB) ProcedureCountSet(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT UPPER(airport_icao), COUNT(*) FROM procedures GROUP BY UPPER(airport_icao)`)
	if err != nil {
		return nil, fmt.Errorf("procedures: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var icao string
		var n int
		if err := rows.Scan(&icao, &n); err != nil {
			return nil, err
		}
		counts[icao] = n
	}
	return counts, rows.Err()
}

// AIPField returns the first non-blank value among the named free-text
// reference-document fields for an airport (e.g. "customs", "immigration").
func (s *DB) AIPField(ctx context.Context, icao string, fields ...string) (string, error) {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	for _, f := range fields {
		var v sql.NullString
		err := s.db.QueryRowContext(ctx, `
			SELECT value FROM aip_fields
			WHERE UPPER(icao) = ? AND LOWER(field) = LOWER(?)`, icao, f).Scan(&v)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("aip field %s/%s: %w", icao, f, err)
		}
		if strings.TrimSpace(v.String) != "" {
			return v.String, nil
		}
	}
	return "", &core.NotFoundError{Kind: "aip field", Ref: icao}
}

func prefixCols(alias string) string {
	cols := strings.Split(airportCols, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}
