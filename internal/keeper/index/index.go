// Package index tracks per-product last-update timestamps in a small
// SQLite table, resolving spec.md §9's stale-product Open Question:
// "stale" (idle >10s) becomes a real query against observed update
// history instead of a fallback label. Grounded on the teacher's
// go-sqlite3 usage (trader-go/internal/modules/universe/history_db.go).
package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS product_updates (
	product_hash INTEGER PRIMARY KEY,
	coverage     INTEGER NOT NULL,
	chain        INTEGER NOT NULL,
	asset        INTEGER NOT NULL,
	last_update  INTEGER NOT NULL
);
`

// Store is a SQLite-backed product_hash -> last_update_unix index.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or opens the SQLite database at path and ensures the
// schema exists.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: migrate schema: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "keeper_index").Logger()}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Touch records that product was just updated at ts.
func (s *Store) Touch(ctx context.Context, product catalog.ProductKey, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_updates (product_hash, coverage, chain, asset, last_update)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(product_hash) DO UPDATE SET last_update = excluded.last_update
	`, product.Hash(), product.Coverage, product.Chain, product.Asset, ts.Unix())
	if err != nil {
		return fmt.Errorf("index: touch %s: %w", product.Name(), err)
	}
	return nil
}

// LastUpdate returns the last recorded update time for product, and
// whether it has ever been updated.
func (s *Store) LastUpdate(ctx context.Context, product catalog.ProductKey) (time.Time, bool, error) {
	var unix int64
	err := s.db.QueryRowContext(ctx, `SELECT last_update FROM product_updates WHERE product_hash = ?`, product.Hash()).Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("index: last update %s: %w", product.Name(), err)
	}
	return time.Unix(unix, 0), true, nil
}

// Prune deletes rows whose last update is strictly before cutoff,
// bounding the table's growth across the process lifetime. Returns
// the number of rows removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM product_updates WHERE last_update < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("index: prune: %w", err)
	}
	return res.RowsAffected()
}

// StaleSince returns every known product whose last update is at or
// before cutoff (spec.md §4.8: "no update in >10s").
func (s *Store) StaleSince(ctx context.Context, cutoff time.Time) ([]catalog.ProductKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT coverage, chain, asset FROM product_updates WHERE last_update <= ?`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("index: stale query: %w", err)
	}
	defer rows.Close()

	var out []catalog.ProductKey
	for rows.Next() {
		var p catalog.ProductKey
		if err := rows.Scan(&p.Coverage, &p.Chain, &p.Asset); err != nil {
			return nil, fmt.Errorf("index: stale scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: stale rows: %w", err)
	}
	return out, nil
}
