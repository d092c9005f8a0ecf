package testutil

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/studyplan/internal/db"
)

// FailOnNthExecUoW runs the real SQLite unit of work but makes write
// number FailOn (counting from 1) return Err. Tests use it to break an
// import or a reschedule commit halfway and check that no group, plan or
// log row survives. Reads are never failed.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingWrites{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

// failingWrites counts writes inside one transaction.
type failingWrites struct {
	db.DBTX
	writes int
	failOn int
	err    error
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
