package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLiteBlockRepo implements BlockRepo using a SQLite database.
type SQLiteBlockRepo struct {
	db db.DBTX
}

func NewSQLiteBlockRepo(conn db.DBTX) *SQLiteBlockRepo {
	return &SQLiteBlockRepo{db: conn}
}

func (r *SQLiteBlockRepo) Create(ctx context.Context, b *domain.BlockDefinition) error {
	query := `INSERT INTO block_definitions (id, group_id, day_of_week, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, b.ID, b.GroupID, int(b.DayOfWeek), b.StartTime.String(), b.EndTime.String())
	if err != nil {
		return fmt.Errorf("inserting block definition: %w", err)
	}
	return nil
}

func (r *SQLiteBlockRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.BlockDefinition, error) {
	query := `SELECT id, group_id, day_of_week, start_time, end_time
		FROM block_definitions WHERE group_id = ? ORDER BY day_of_week, start_time, id`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing block definitions: %w", err)
	}
	defer rows.Close()

	var out []domain.BlockDefinition
	for rows.Next() {
		var (
			b          domain.BlockDefinition
			dow        int
			start, end string
		)
		if err := rows.Scan(&b.ID, &b.GroupID, &dow, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning block definition: %w", err)
		}
		b.DayOfWeek = time.Weekday(dow)
		if b.StartTime, err = domain.ParseClock(start); err != nil {
			return nil, fmt.Errorf("parsing start_time of block %s: %w", b.ID, err)
		}
		if b.EndTime, err = domain.ParseClock(end); err != nil {
			return nil, fmt.Errorf("parsing end_time of block %s: %w", b.ID, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating block definitions: %w", err)
	}
	return out, nil
}

// SQLiteExclusionRepo implements ExclusionRepo using a SQLite database.
type SQLiteExclusionRepo struct {
	db db.DBTX
}

func NewSQLiteExclusionRepo(conn db.DBTX) *SQLiteExclusionRepo {
	return &SQLiteExclusionRepo{db: conn}
}

// Upsert stores an exclusion. A second exclusion on the same date of the
// same group replaces the type and reason of the first.
func (r *SQLiteExclusionRepo) Upsert(ctx context.Context, e *domain.Exclusion) error {
	query := `INSERT INTO plan_exclusions (id, group_id, exclusion_date, exclusion_type, reason)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(group_id, exclusion_date) DO UPDATE SET
			exclusion_type = excluded.exclusion_type,
			reason = excluded.reason`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.GroupID, domain.DateKey(e.Date),
		domain.CoalesceStr(string(e.Type), string(domain.ExclusionOther)), e.Reason)
	if err != nil {
		return fmt.Errorf("upserting exclusion: %w", err)
	}
	return nil
}

func (r *SQLiteExclusionRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.Exclusion, error) {
	query := `SELECT id, group_id, exclusion_date, exclusion_type, reason
		FROM plan_exclusions WHERE group_id = ? ORDER BY exclusion_date`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing exclusions: %w", err)
	}
	defer rows.Close()

	var out []domain.Exclusion
	for rows.Next() {
		var (
			e        domain.Exclusion
			day, typ string
		)
		if err := rows.Scan(&e.ID, &e.GroupID, &day, &typ, &e.Reason); err != nil {
			return nil, fmt.Errorf("scanning exclusion: %w", err)
		}
		if e.Date, err = parseDate(day, "exclusion_date"); err != nil {
			return nil, err
		}
		e.Type = domain.ExclusionType(typ)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exclusions: %w", err)
	}
	return out, nil
}

// SQLiteAcademyRepo implements AcademyRepo using a SQLite database.
type SQLiteAcademyRepo struct {
	db db.DBTX
}

func NewSQLiteAcademyRepo(conn db.DBTX) *SQLiteAcademyRepo {
	return &SQLiteAcademyRepo{db: conn}
}

func (r *SQLiteAcademyRepo) Create(ctx context.Context, a *domain.AcademySchedule) error {
	query := `INSERT INTO academy_schedules
		(id, group_id, day_of_week, start_time, end_time, academy_name, subject, travel_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.GroupID, int(a.DayOfWeek),
		a.StartTime.String(), a.EndTime.String(), a.Name, a.Subject, a.TravelMinutes)
	if err != nil {
		return fmt.Errorf("inserting academy schedule: %w", err)
	}
	return nil
}

func (r *SQLiteAcademyRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.AcademySchedule, error) {
	query := `SELECT id, group_id, day_of_week, start_time, end_time, academy_name, subject, travel_minutes
		FROM academy_schedules WHERE group_id = ? ORDER BY day_of_week, start_time, id`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing academy schedules: %w", err)
	}
	defer rows.Close()

	var out []domain.AcademySchedule
	for rows.Next() {
		var (
			a          domain.AcademySchedule
			dow        int
			start, end string
		)
		if err := rows.Scan(&a.ID, &a.GroupID, &dow, &start, &end, &a.Name, &a.Subject, &a.TravelMinutes); err != nil {
			return nil, fmt.Errorf("scanning academy schedule: %w", err)
		}
		a.DayOfWeek = time.Weekday(dow)
		if a.StartTime, err = domain.ParseClock(start); err != nil {
			return nil, fmt.Errorf("parsing start_time of academy %s: %w", a.ID, err)
		}
		if a.EndTime, err = domain.ParseClock(end); err != nil {
			return nil, fmt.Errorf("parsing end_time of academy %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating academy schedules: %w", err)
	}
	return out, nil
}
