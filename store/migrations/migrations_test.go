package migrations

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func TestRunFreshDB(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	defer db.Close()

	require.NoError(t, Run(db), "Run should succeed on a fresh database")

	for _, table := range []string{"notes", "settings", "streaks"} {
		var name string
		err = db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		require.NoError(t, err, "%s table should exist", table)
	}
}

func TestRunIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Run(db), "first run should succeed")
	require.NoError(t, Run(db), "second run should not error")
}

func TestInitSeedsNoteRow(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Run(db))

	var body string
	err = db.QueryRow(`SELECT body FROM notes WHERE id = 1`).Scan(&body)
	require.NoError(t, err, "migration should seed the single note row")
	require.Empty(t, body)
}
