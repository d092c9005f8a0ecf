package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a private in-memory study plan database with every
// migration applied, so groups, contents, plans and logs can be seeded
// straight away. It is closed when t finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening study plan test database")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// NewTestUoW is the unit of work services and the reschedule committer
// use in tests.
func NewTestUoW(conn *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(conn)
}
