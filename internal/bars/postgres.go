package bars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/barcheck/internal/model"
)

// DefaultTable is the bars table read when none is configured.
const DefaultTable = "daily_bars"

// Querier is the subset of *pgxpool.Pool used by Postgres.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres reads bars from a table shaped like:
//
//	CREATE TABLE daily_bars (
//	    sid    BIGINT NOT NULL,
//	    day    DATE   NOT NULL,
//	    open   BIGINT NOT NULL,
//	    high   BIGINT NOT NULL,
//	    low    BIGINT NOT NULL,
//	    close  BIGINT NOT NULL,
//	    volume BIGINT NOT NULL,
//	    PRIMARY KEY (sid, day)
//	);
//
// Prices are stored already scaled by model.PriceScale.
type Postgres struct {
	db    Querier
	table string
	query string
}

// NewPostgres creates a Postgres source reading from table, which may be
// schema-qualified ("archive.daily_bars").
func NewPostgres(db Querier, table string) (*Postgres, error) {
	if table == "" {
		table = DefaultTable
	}
	ident, err := parseIdentifier(table)
	if err != nil {
		return nil, err
	}

	return &Postgres{
		db:    db,
		table: table,
		query: fmt.Sprintf(
			`SELECT open, high, low, close, volume FROM %s WHERE sid = $1 AND day = $2`,
			ident.Sanitize(),
		),
	}, nil
}

// Get fetches one row. A missing row yields the absent sentinel.
func (p *Postgres) Get(ctx context.Context, asset model.Asset, day time.Time) (model.Bar, error) {
	day = model.NormalizeDay(day)
	bar := model.Bar{Day: day}

	err := p.db.QueryRow(ctx, p.query, asset.SID, day).Scan(
		&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AbsentBar(day), nil
	}
	if err != nil {
		return model.Bar{}, fmt.Errorf("query %s for %s on %s: %w",
			p.table, asset, day.Format(time.DateOnly), err)
	}
	return bar, nil
}

func parseIdentifier(name string) (pgx.Identifier, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return pgx.Identifier(parts), nil
}
