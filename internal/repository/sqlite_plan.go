package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLitePlanRepo implements PlanRepo using a SQLite database.
type SQLitePlanRepo struct {
	db db.DBTX
}

func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

const planColumns = `id, group_id, plan_content_id, plan_date, start_time, end_time, content_type, content_id,
	subject, range_start, range_end, day_type, is_partial, is_continued, sequence, status, created_at, updated_at`

const planColumnCount = 18

// CreateBatch inserts plans with one multi-row INSERT per insertBatchSize
// rows. Zero timestamps are filled with the current time.
func (r *SQLitePlanRepo) CreateBatch(ctx context.Context, plans []domain.Plan) error {
	now := nowUTC()
	for start := 0; start < len(plans); start += insertBatchSize {
		end := min(start+insertBatchSize, len(plans))
		chunk := plans[start:end]

		args := make([]any, 0, len(chunk)*planColumnCount)
		for _, p := range chunk {
			created := p.CreatedAt
			if created.IsZero() {
				created = now
			}
			updated := p.UpdatedAt
			if updated.IsZero() {
				updated = created
			}
			args = append(args,
				p.ID, p.GroupID, p.PlanContentID, domain.DateKey(p.PlanDate),
				p.StartTime.String(), p.EndTime.String(), string(p.ContentType), p.ContentID,
				p.Subject, p.RangeStart, p.RangeEnd, string(p.DayType),
				boolToInt(p.IsPartial), boolToInt(p.IsContinued), p.Sequence,
				domain.CoalesceStr(string(p.Status), string(domain.PlanPending)),
				formatTS(created), formatTS(updated),
			)
		}
		query := `INSERT INTO plans (` + planColumns + `) VALUES ` + placeholders(len(chunk), planColumnCount)
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting plans %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (r *SQLitePlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	p, err := scanPlan(r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLitePlanRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE group_id = ?
		ORDER BY plan_date, sequence, start_time, id`
	return r.list(ctx, query, groupID)
}

// ListBetween returns the plans dated in [from, to].
func (r *SQLitePlanRepo) ListBetween(ctx context.Context, groupID string, from, to time.Time) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans
		WHERE group_id = ? AND plan_date >= ? AND plan_date <= ?
		ORDER BY plan_date, sequence, start_time, id`
	return r.list(ctx, query, groupID, domain.DateKey(from), domain.DateKey(to))
}

func (r *SQLitePlanRepo) list(ctx context.Context, query string, args ...any) ([]domain.Plan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var out []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return out, nil
}

// UpdateSchedule rewrites the placement of a plan that is still pending.
// A plan that was started or removed meanwhile is a conflict.
func (r *SQLitePlanRepo) UpdateSchedule(ctx context.Context, p *domain.Plan) error {
	query := `UPDATE plans SET plan_date = ?, start_time = ?, end_time = ?, content_type = ?, content_id = ?,
		subject = ?, range_start = ?, range_end = ?, day_type = ?, is_partial = ?, is_continued = ?,
		sequence = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query,
		domain.DateKey(p.PlanDate), p.StartTime.String(), p.EndTime.String(), string(p.ContentType), p.ContentID,
		p.Subject, p.RangeStart, p.RangeEnd, string(p.DayType), boolToInt(p.IsPartial), boolToInt(p.IsContinued),
		p.Sequence, formatTS(nowUTC()), p.ID)
	if err != nil {
		return fmt.Errorf("updating plan: %w", err)
	}
	return expectOne(res, fmt.Errorf("pending plan %s: %w", p.ID, ErrVersionConflict))
}

func (r *SQLitePlanRepo) UpdateStatus(ctx context.Context, id string, status domain.PlanStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE plans SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTS(nowUTC()), id)
	if err != nil {
		return fmt.Errorf("updating plan status: %w", err)
	}
	return expectOne(res, fmt.Errorf("plan %s: %w", id, ErrNotFound))
}

// DeletePending hard-deletes a pending plan.
func (r *SQLitePlanRepo) DeletePending(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ? AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return expectOne(res, fmt.Errorf("pending plan %s: %w", id, ErrVersionConflict))
}

// DeleteAllPending removes every pending plan of a group, used before a
// full generation.
func (r *SQLitePlanRepo) DeleteAllPending(ctx context.Context, groupID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE group_id = ? AND status = 'pending'`, groupID)
	if err != nil {
		return 0, fmt.Errorf("deleting pending plans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return int(n), nil
}

func scanPlan(row scanner) (domain.Plan, error) {
	var (
		p                                domain.Plan
		day, start, end, ct, dayType, st string
		partial, continued               int
		created, updated                 string
	)
	err := row.Scan(&p.ID, &p.GroupID, &p.PlanContentID, &day, &start, &end, &ct, &p.ContentID,
		&p.Subject, &p.RangeStart, &p.RangeEnd, &dayType, &partial, &continued, &p.Sequence, &st,
		&created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scanning plan: %w", err)
	}
	if p.PlanDate, err = parseDate(day, "plan_date"); err != nil {
		return p, err
	}
	if p.StartTime, err = domain.ParseClock(start); err != nil {
		return p, fmt.Errorf("parsing start_time: %w", err)
	}
	if p.EndTime, err = domain.ParseClock(end); err != nil {
		return p, fmt.Errorf("parsing end_time: %w", err)
	}
	p.ContentType = domain.ContentType(ct)
	p.DayType = domain.DayType(dayType)
	p.IsPartial = intToBool(partial)
	p.IsContinued = intToBool(continued)
	p.Status = domain.PlanStatus(st)
	if p.CreatedAt, err = parseTS(created, "created_at"); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTS(updated, "updated_at"); err != nil {
		return p, err
	}
	return p, nil
}
