package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLiteRescheduleLogRepo implements RescheduleLogRepo using a SQLite database.
type SQLiteRescheduleLogRepo struct {
	db db.DBTX
}

func NewSQLiteRescheduleLogRepo(conn db.DBTX) *SQLiteRescheduleLogRepo {
	return &SQLiteRescheduleLogRepo{db: conn}
}

const logColumns = `id, group_id, student_id, adjustments, subjects, affected_dates, plans_before, plans_after,
	reason, status, created_at`

func (r *SQLiteRescheduleLogRepo) Create(ctx context.Context, l *domain.RescheduleLog) error {
	adjustments, err := toJSON(nonNil(l.Adjustments))
	if err != nil {
		return fmt.Errorf("encoding adjustments: %w", err)
	}
	subjects, err := toJSON(nonNil(l.Subjects))
	if err != nil {
		return fmt.Errorf("encoding subjects: %w", err)
	}
	dates, err := toJSON(nonNil(l.AffectedDates))
	if err != nil {
		return fmt.Errorf("encoding affected dates: %w", err)
	}
	query := `INSERT INTO reschedule_logs (` + logColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		l.ID, l.GroupID, l.StudentID, adjustments, subjects, dates, l.PlansBefore, l.PlansAfter,
		l.Reason, domain.CoalesceStr(string(l.Status), string(domain.LogCompleted)), formatTS(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting reschedule log: %w", err)
	}
	return nil
}

func (r *SQLiteRescheduleLogRepo) GetByID(ctx context.Context, id string) (*domain.RescheduleLog, error) {
	l, err := scanLog(r.db.QueryRowContext(ctx, `SELECT `+logColumns+` FROM reschedule_logs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reschedule log %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByGroup returns the logs of a group, oldest first.
func (r *SQLiteRescheduleLogRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.RescheduleLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM reschedule_logs WHERE group_id = ? ORDER BY created_at, id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing reschedule logs: %w", err)
	}
	defer rows.Close()

	var out []domain.RescheduleLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reschedule logs: %w", err)
	}
	return out, nil
}

func scanLog(row scanner) (domain.RescheduleLog, error) {
	var (
		l                                domain.RescheduleLog
		adjustments, subjects, dates, st string
		created                          string
	)
	err := row.Scan(&l.ID, &l.GroupID, &l.StudentID, &adjustments, &subjects, &dates,
		&l.PlansBefore, &l.PlansAfter, &l.Reason, &st, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, err
		}
		return l, fmt.Errorf("scanning reschedule log: %w", err)
	}
	if err := fromJSON(adjustments, &l.Adjustments); err != nil {
		return l, fmt.Errorf("decoding adjustments: %w", err)
	}
	if err := fromJSON(subjects, &l.Subjects); err != nil {
		return l, fmt.Errorf("decoding subjects: %w", err)
	}
	if err := fromJSON(dates, &l.AffectedDates); err != nil {
		return l, fmt.Errorf("decoding affected dates: %w", err)
	}
	l.Status = domain.RescheduleLogStatus(st)
	if l.CreatedAt, err = parseTS(created, "created_at"); err != nil {
		return l, err
	}
	return l, nil
}

// SQLiteHistoryRepo implements HistoryRepo using a SQLite database.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

func NewSQLiteHistoryRepo(conn db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: conn}
}

const historyColumnCount = 6

func (r *SQLiteHistoryRepo) CreateBatch(ctx context.Context, hs []domain.PlanHistory) error {
	for start := 0; start < len(hs); start += insertBatchSize {
		end := min(start+insertBatchSize, len(hs))
		chunk := hs[start:end]

		args := make([]any, 0, len(chunk)*historyColumnCount)
		for _, h := range chunk {
			snap, err := toJSON(h.Snapshot)
			if err != nil {
				return fmt.Errorf("encoding snapshot of plan %s: %w", h.PlanID, err)
			}
			var logID any
			if h.RescheduleLogID != nil {
				logID = *h.RescheduleLogID
			}
			args = append(args, h.ID, h.PlanID, h.GroupID, snap, logID, formatTS(h.CreatedAt))
		}
		query := `INSERT INTO plan_history (id, plan_id, group_id, snapshot, reschedule_log_id, created_at)
			VALUES ` + placeholders(len(chunk), historyColumnCount)
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting plan history: %w", err)
		}
	}
	return nil
}

func (r *SQLiteHistoryRepo) ListByPlan(ctx context.Context, planID string) ([]domain.PlanHistory, error) {
	return r.list(ctx, `WHERE plan_id = ?`, planID)
}

func (r *SQLiteHistoryRepo) ListByLog(ctx context.Context, logID string) ([]domain.PlanHistory, error) {
	return r.list(ctx, `WHERE reschedule_log_id = ?`, logID)
}

func (r *SQLiteHistoryRepo) list(ctx context.Context, where string, arg string) ([]domain.PlanHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, group_id, snapshot, reschedule_log_id, created_at FROM plan_history `+where+`
		ORDER BY created_at, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("listing plan history: %w", err)
	}
	defer rows.Close()

	var out []domain.PlanHistory
	for rows.Next() {
		var (
			h             domain.PlanHistory
			snap, created string
			logID         sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.PlanID, &h.GroupID, &snap, &logID, &created); err != nil {
			return nil, fmt.Errorf("scanning plan history: %w", err)
		}
		if err := fromJSON(snap, &h.Snapshot); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		if logID.Valid {
			id := logID.String
			h.RescheduleLogID = &id
		}
		if h.CreatedAt, err = parseTS(created, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan history: %w", err)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
