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

// SQLiteGroupRepo implements GroupRepo using a SQLite database.
type SQLiteGroupRepo struct {
	db db.DBTX
}

func NewSQLiteGroupRepo(conn db.DBTX) *SQLiteGroupRepo {
	return &SQLiteGroupRepo{db: conn}
}

const groupColumns = `id, student_id, name, mode, period_start, period_end, study_days, review_days,
	daily_cap_min, lunch_start, lunch_end, status, version, created_at, updated_at, deleted_at`

func (r *SQLiteGroupRepo) Create(ctx context.Context, g *domain.PlanGroup) error {
	if g.Version == 0 {
		g.Version = 1
	}
	query := `INSERT INTO plan_groups (` + groupColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	lunchStart, lunchEnd := lunchColumns(g.Lunch)
	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.StudentID,
		g.Name,
		domain.CoalesceStr(string(g.Mode), string(domain.GroupModeNormal)),
		domain.DateKey(g.PeriodStart),
		domain.DateKey(g.PeriodEnd),
		g.StudyDays,
		g.ReviewDays,
		g.DailyCapMinutes,
		lunchStart,
		lunchEnd,
		domain.CoalesceStr(string(g.Status), string(domain.GroupActive)),
		g.Version,
		formatTS(g.CreatedAt),
		formatTS(g.UpdatedAt),
		nullableTimeToString(g.DeletedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting plan group: %w", err)
	}
	return nil
}

func (r *SQLiteGroupRepo) GetByID(ctx context.Context, id string) (*domain.PlanGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM plan_groups WHERE id = ?`
	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan group %s: %w", id, ErrNotFound)
	}
	return g, err
}

// List returns the groups of a student, or of every student when
// studentID is empty, ordered by period start.
func (r *SQLiteGroupRepo) List(ctx context.Context, studentID string, includeDeleted bool) ([]*domain.PlanGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM plan_groups
		WHERE (? = '' OR student_id = ?) AND (? = 1 OR deleted_at IS NULL)
		ORDER BY period_start, id`
	rows, err := r.db.QueryContext(ctx, query, studentID, studentID, boolToInt(includeDeleted))
	if err != nil {
		return nil, fmt.Errorf("listing plan groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.PlanGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan groups: %w", err)
	}
	return groups, nil
}

func (r *SQLiteGroupRepo) Update(ctx context.Context, g *domain.PlanGroup) error {
	query := `UPDATE plan_groups SET name = ?, mode = ?, period_start = ?, period_end = ?,
		study_days = ?, review_days = ?, daily_cap_min = ?, lunch_start = ?, lunch_end = ?,
		status = ?, updated_at = ?
		WHERE id = ?`
	lunchStart, lunchEnd := lunchColumns(g.Lunch)
	res, err := r.db.ExecContext(ctx, query,
		g.Name, string(g.Mode), domain.DateKey(g.PeriodStart), domain.DateKey(g.PeriodEnd),
		g.StudyDays, g.ReviewDays, g.DailyCapMinutes, lunchStart, lunchEnd,
		string(g.Status), formatTS(nowUTC()), g.ID)
	if err != nil {
		return fmt.Errorf("updating plan group: %w", err)
	}
	return expectOne(res, fmt.Errorf("plan group %s: %w", g.ID, ErrNotFound))
}

func (r *SQLiteGroupRepo) SoftDelete(ctx context.Context, id string) error {
	now := formatTS(nowUTC())
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_groups SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return fmt.Errorf("deleting plan group: %w", err)
	}
	return expectOne(res, fmt.Errorf("plan group %s: %w", id, ErrNotFound))
}

// BumpVersion increments the version only if it still equals expected.
func (r *SQLiteGroupRepo) BumpVersion(ctx context.Context, id string, expected int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_groups SET version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		formatTS(nowUTC()), id, expected)
	if err != nil {
		return fmt.Errorf("bumping group version: %w", err)
	}
	return expectOne(res, fmt.Errorf("plan group %s at version %d: %w", id, expected, ErrVersionConflict))
}

func scanGroup(row scanner) (*domain.PlanGroup, error) {
	var (
		g                             domain.PlanGroup
		mode, status                  string
		start, end, created, updated  string
		deleted, lunchStart, lunchEnd sql.NullString
	)
	err := row.Scan(&g.ID, &g.StudentID, &g.Name, &mode, &start, &end, &g.StudyDays, &g.ReviewDays,
		&g.DailyCapMinutes, &lunchStart, &lunchEnd, &status, &g.Version, &created, &updated, &deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning plan group: %w", err)
	}
	g.Mode = domain.GroupMode(mode)
	g.Status = domain.GroupStatus(status)
	if g.PeriodStart, err = parseDate(start, "period_start"); err != nil {
		return nil, err
	}
	if g.PeriodEnd, err = parseDate(end, "period_end"); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTS(created, "created_at"); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTS(updated, "updated_at"); err != nil {
		return nil, err
	}
	g.DeletedAt = parseNullableTime(deleted, time.RFC3339)
	if lunchStart.Valid && lunchEnd.Valid {
		var lunch domain.StudyTimeSlot
		if lunch.Start, err = domain.ParseClock(lunchStart.String); err != nil {
			return nil, fmt.Errorf("parsing lunch_start of group %s: %w", g.ID, err)
		}
		if lunch.End, err = domain.ParseClock(lunchEnd.String); err != nil {
			return nil, fmt.Errorf("parsing lunch_end of group %s: %w", g.ID, err)
		}
		g.Lunch = &lunch
	}
	return &g, nil
}

func lunchColumns(lunch *domain.StudyTimeSlot) (any, any) {
	if lunch == nil {
		return nil, nil
	}
	return lunch.Start.String(), lunch.End.String()
}

// expectOne turns "no row affected" into notFound.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
