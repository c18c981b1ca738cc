package bars

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rickgao/barcheck/internal/model"
)

func writeSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE daily_bars (
		sid INTEGER NOT NULL, day TEXT NOT NULL,
		open INTEGER NOT NULL, high INTEGER NOT NULL, low INTEGER NOT NULL,
		close INTEGER NOT NULL, volume INTEGER NOT NULL,
		PRIMARY KEY (sid, day))`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO daily_bars VALUES (2, '2016-03-29', 205200, 210200, 200200, 206200, 200001)`)
	require.NoError(t, err)
	return path
}

func TestSQLite_Get(t *testing.T) {
	src, db, err := OpenSQLite(writeSQLite(t), "")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	asset := model.Asset{SID: 2, Symbol: "EQUITY2"}

	bar, err := src.Get(ctx, asset, day("2016-03-29"))
	require.NoError(t, err)
	require.Equal(t, model.Bar{
		Day:    day("2016-03-29"),
		Open:   205200,
		High:   210200,
		Low:    200200,
		Close:  206200,
		Volume: 200001,
	}, bar)

	missing, err := src.Get(ctx, asset, day("2016-03-30"))
	require.NoError(t, err)
	require.True(t, missing.IsAbsent())
	require.Equal(t, day("2016-03-30"), missing.Day)
}

func TestSQLite_MissingTable(t *testing.T) {
	src, db, err := OpenSQLite(writeSQLite(t), "other_bars")
	require.NoError(t, err)
	defer db.Close()

	_, err = src.Get(context.Background(), model.Asset{SID: 2}, day("2016-03-29"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "query other_bars")
}

func TestNewSQLite_InvalidTable(t *testing.T) {
	for _, name := range []string{`bars"; DROP TABLE x; --`, "main.bars", "bad name"} {
		_, err := NewSQLite(nil, name)
		require.Error(t, err, name)
	}
}
