package bars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/rickgao/barcheck/internal/model"
)

// RowQuerier is the subset of *sql.DB used by SQLite.
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite reads bars from a local database file with the same columns as
// the Postgres table; day is stored as YYYY-MM-DD text.
type SQLite struct {
	db    RowQuerier
	table string
	query string
}

// OpenSQLite opens the database file at path and returns the handle
// alongside the source. The caller owns the *sql.DB.
func OpenSQLite(path, table string) (*SQLite, *sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	src, err := NewSQLite(db, table)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return src, db, nil
}

// NewSQLite creates a SQLite source reading from table.
func NewSQLite(db RowQuerier, table string) (*SQLite, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validSQLiteName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	return &SQLite{
		db:    db,
		table: table,
		query: fmt.Sprintf(
			`SELECT open, high, low, close, volume FROM "%s" WHERE sid = ? AND day = ?`,
			table,
		),
	}, nil
}

// Get fetches one row. A missing row yields the absent sentinel.
func (s *SQLite) Get(ctx context.Context, asset model.Asset, day time.Time) (model.Bar, error) {
	day = model.NormalizeDay(day)
	bar := model.Bar{Day: day}

	err := s.db.QueryRowContext(ctx, s.query, asset.SID, day.Format(time.DateOnly)).Scan(
		&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AbsentBar(day), nil
	}
	if err != nil {
		return model.Bar{}, fmt.Errorf("query %s for %s on %s: %w",
			s.table, asset, day.Format(time.DateOnly), err)
	}
	return bar, nil
}

func validSQLiteName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}
