package db

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork scopes one group-level change. An import, a generation run
// and a reschedule commit each get exactly one; repositories built on the
// DBTX it hands out read one snapshot and write all-or-nothing.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork opens a database/sql transaction per WithinTx call.
type SQLiteUnitOfWork struct {
	conn *sql.DB
}

func NewSQLiteUnitOfWork(conn *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{conn: conn}
}

// WithinTx commits when fn returns nil. An error or a panic in fn rolls
// back every plan, history and version write made through tx; the panic
// is re-raised after the rollback.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("opening unit of work: %w", err)
	}
	done := false
	defer func() {
		if done {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && err != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	err = tx.Commit()
	done = true
	if err != nil {
		return fmt.Errorf("committing unit of work: %w", err)
	}
	return nil
}
