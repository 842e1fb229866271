// Package storetest builds seeded read-only airport stores for tests.
package storetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/airpath/airpath/internal/store"
)

const schema = `
CREATE TABLE airports (
	icao TEXT PRIMARY KEY,
	iata TEXT,
	name TEXT NOT NULL,
	municipality TEXT,
	country TEXT NOT NULL,
	region TEXT,
	type TEXT NOT NULL,
	lat REAL,
	lon REAL,
	elevation_ft INTEGER
);
CREATE TABLE runways (
	airport_icao TEXT NOT NULL,
	le_ident TEXT NOT NULL,
	he_ident TEXT NOT NULL,
	length_ft INTEGER,
	width_ft INTEGER,
	surface TEXT,
	lighted INTEGER DEFAULT 0
);
CREATE TABLE border_crossings (
	icao TEXT NOT NULL,
	country_iso TEXT NOT NULL
);
CREATE TABLE notifications (
	icao TEXT PRIMARY KEY,
	hours_notice INTEGER,
	summary TEXT,
	operating_hours_start TEXT,
	operating_hours_end TEXT,
	weekday_rules TEXT,
	contact_info TEXT,
	confidence REAL
);
CREATE TABLE aip_fields (
	icao TEXT NOT NULL,
	field TEXT NOT NULL,
	value TEXT
);
CREATE TABLE procedures (
	airport_icao TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT
);
`

// Airports seeded by default: the London/Paris corridor plus outliers.
var seedSQL = []string{
	// icao, iata, name, municipality, country, region, type, lat, lon, elev
	`INSERT INTO airports VALUES ('EGLL','LHR','London Heathrow Airport','London','GB','GB-ENG','large_airport',51.4706,-0.461941,83)`,
	`INSERT INTO airports VALUES ('LFPG','CDG','Charles de Gaulle International Airport','Paris','FR','FR-IDF','large_airport',49.012798,2.55,392)`,
	`INSERT INTO airports VALUES ('LFAT','XLT','Le Touquet-Côte d''Opale Airport','Le Touquet','FR','FR-HDF','medium_airport',50.517399,1.62059,36)`,
	`INSERT INTO airports VALUES ('LFOP',NULL,'Rouen Airport','Rouen','FR','FR-NOR','medium_airport',49.384201,1.1748,512)`,
	`INSERT INTO airports VALUES ('EGKA','ESH','Shoreham Airport','Brighton','GB','GB-ENG','small_airport',50.835602,-0.297222,7)`,
	`INSERT INTO airports VALUES ('EGMD',NULL,'Lydd Airport','Lydd','GB','GB-ENG','small_airport',50.956101,0.939167,13)`,
	`INSERT INTO airports VALUES ('EBOS','OST','Ostend-Bruges International Airport','Ostend','BE','BE-VLG','medium_airport',51.198898,2.862,13)`,
	`INSERT INTO airports VALUES ('LFPN',NULL,'Toussus-le-Noble Airport','Toussus-le-Noble','FR','FR-IDF','small_airport',48.751901,2.10619,538)`,
	`INSERT INTO airports VALUES ('EGTR',NULL,'Elstree Airfield','Elstree','GB','GB-ENG','small_airport',51.6557,-0.325833,332)`,
	`INSERT INTO airports VALUES ('LFHE',NULL,'Romans St Paul Heliport','Romans','FR','FR-ARA','heliport',45.05,5.05,800)`,
	`INSERT INTO airports VALUES ('EGXX',NULL,'Derelict Field','Nowhere','GB','GB-ENG','closed',51.0,0.5,100)`,
	`INSERT INTO airports VALUES ('LSZH','ZRH','Zurich Airport','Zurich','CH','CH-ZH','large_airport',47.458056,8.548056,1416)`,
	`INSERT INTO airports VALUES ('LFXX',NULL,'Chart Only Point',NULL,'FR',NULL,'small_airport',NULL,NULL,NULL)`,

	`INSERT INTO runways VALUES ('EGLL','09L','27R',12802,164,'ASP',1)`,
	`INSERT INTO runways VALUES ('EGLL','09R','27L',12008,164,'ASP',1)`,
	`INSERT INTO runways VALUES ('LFAT','13','31',6070,148,'ASP',1)`,
	`INSERT INTO runways VALUES ('EGKA','02','20',2703,NULL,'GRS',0)`,

	`INSERT INTO border_crossings VALUES ('EGLL','GB')`,
	`INSERT INTO border_crossings VALUES ('LFPG','FR')`,
	`INSERT INTO border_crossings VALUES ('LFAT','FR')`,
	`INSERT INTO border_crossings VALUES ('EBOS','BE')`,
	`INSERT INTO border_crossings VALUES ('EGMD','GB')`,

	`INSERT INTO notifications VALUES ('LFAT',4,'PPR 4 HR for customs','0800','1800',NULL,'ops@lftat.example',0.9)`,
	`INSERT INTO notifications VALUES ('EGMD',NULL,'Customs available with 24h notice, weekends 48h notice',NULL,NULL,'weekend: 48h',NULL,0.7)`,
	`INSERT INTO notifications VALUES ('EBOS',2,'H24 customs, 2h notice for immigration','0000','2400',NULL,NULL,0.95)`,
	`INSERT INTO notifications VALUES ('LFOP',24,'PN 24 HR',NULL,NULL,NULL,NULL,0.8)`,

	`INSERT INTO aip_fields VALUES ('EGKA','customs','Customs O/R 24 HR PN via operator')`,
	`INSERT INTO aip_fields VALUES ('EGLL','customs','H24')`,

	`INSERT INTO procedures VALUES ('EGLL','ILS 27R','ILS')`,
	`INSERT INTO procedures VALUES ('LFPG','ILS 26L','ILS')`,
	`INSERT INTO procedures VALUES ('LFAT','RNP 13','RNAV')`,
	`INSERT INTO procedures VALUES ('EBOS','ILS 26','ILS')`,
	`INSERT INTO procedures VALUES ('LFOP','RNP 22','RNAV')`,
}

// Open creates a seeded store in t.TempDir() and opens it read-only.
func Open(t *testing.T) *store.DB {
	t.Helper()
	return OpenWith(t, nil)
}

// OpenWith creates a seeded store and applies extra statements before
// reopening it read-only.
func OpenWith(t *testing.T, extra []string) *store.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "airports.db")

	rw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	if _, err := rw.ExecContext(ctx, schema); err != nil {
		t.Fatalf("apply fixture schema: %v", err)
	}
	for _, stmt := range append(append([]string{}, seedSQL...), extra...) {
		if _, err := rw.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed fixture: %v\n%s", err, stmt)
		}
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("close fixture db: %v", err)
	}

	db, err := store.Open(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen fixture read-only: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
