// Package store provides read-only access to the bundled airport database:
// airports, runways, border crossings, notification requirements, AIP
// free-text fields and instrument procedures. The file ships with the
// application; nothing here ever writes to it, so concurrent reads from
// multiple dispatch calls are safe.
package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/airpath/airpath/internal/core"
)

// DB wraps *sql.DB over the bundled sqlite store.
type DB struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens the store read-only. A missing file surfaces as a
// DataUnavailableError; callers treat it as a per-tool condition, not a
// startup failure.
func Open(ctx context.Context, path string, log *zap.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &core.DataUnavailableError{Store: path, Cause: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &core.DataUnavailableError{Store: path, Cause: err}
	}
	log.Debug("airport store opened", zap.String("path", path))
	return &DB{db: db, log: log}, nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}
