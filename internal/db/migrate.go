package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE statements fail on re-run once the column exists.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillPlanSequence(db); err != nil {
		return fmt.Errorf("backfilling plan sequence: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plan_groups (
		id            TEXT PRIMARY KEY,
		student_id    TEXT NOT NULL,
		name          TEXT NOT NULL,
		mode          TEXT NOT NULL DEFAULT 'normal'
		              CHECK(mode IN ('normal','camp')),
		period_start  TEXT NOT NULL,
		period_end    TEXT NOT NULL,
		study_days    INTEGER NOT NULL DEFAULT 0,
		review_days   INTEGER NOT NULL DEFAULT 0,
		daily_cap_min INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'active'
		              CHECK(status IN ('active','paused','completed')),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		deleted_at    TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_groups_student ON plan_groups(student_id)`,

	`CREATE TABLE IF NOT EXISTS plan_contents (
		id           TEXT PRIMARY KEY,
		group_id     TEXT NOT NULL REFERENCES plan_groups(id) ON DELETE CASCADE,
		content_type TEXT NOT NULL CHECK(content_type IN ('book','lecture','custom')),
		content_id   TEXT NOT NULL,
		start_range  INTEGER NOT NULL,
		end_range    INTEGER NOT NULL,
		subject      TEXT NOT NULL DEFAULT '',
		order_index  INTEGER NOT NULL DEFAULT 0,
		CHECK(start_range <= end_range)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_contents_group ON plan_contents(group_id)`,

	`CREATE TABLE IF NOT EXISTS content_duration_info (
		content_type  TEXT NOT NULL CHECK(content_type IN ('book','lecture','custom')),
		content_id    TEXT NOT NULL,
		difficulty    TEXT NOT NULL DEFAULT '',
		episodes      TEXT NOT NULL DEFAULT '[]',
		total_minutes INTEGER,
		total_units   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (content_type, content_id)
	)`,

	`CREATE TABLE IF NOT EXISTS block_definitions (
		id          TEXT PRIMARY KEY,
		group_id    TEXT NOT NULL REFERENCES plan_groups(id) ON DELETE CASCADE,
		day_of_week INTEGER NOT NULL CHECK(day_of_week BETWEEN 0 AND 6),
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_block_definitions_group ON block_definitions(group_id)`,

	`CREATE TABLE IF NOT EXISTS plan_exclusions (
		id             TEXT PRIMARY KEY,
		group_id       TEXT NOT NULL REFERENCES plan_groups(id) ON DELETE CASCADE,
		exclusion_date TEXT NOT NULL,
		exclusion_type TEXT NOT NULL DEFAULT 'other'
		               CHECK(exclusion_type IN ('vacation','personal','holiday','other')),
		reason         TEXT NOT NULL DEFAULT '',
		UNIQUE(group_id, exclusion_date)
	)`,

	`CREATE TABLE IF NOT EXISTS plans (
		id              TEXT PRIMARY KEY,
		group_id        TEXT NOT NULL REFERENCES plan_groups(id) ON DELETE CASCADE,
		plan_content_id TEXT NOT NULL REFERENCES plan_contents(id) ON DELETE CASCADE,
		plan_date       TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		content_type    TEXT NOT NULL,
		content_id      TEXT NOT NULL,
		subject         TEXT NOT NULL DEFAULT '',
		range_start     INTEGER NOT NULL,
		range_end       INTEGER NOT NULL,
		day_type        TEXT NOT NULL DEFAULT 'study'
		                CHECK(day_type IN ('study','review')),
		is_partial      INTEGER NOT NULL DEFAULT 0,
		is_continued    INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'pending'
		                CHECK(status IN ('pending','in_progress','completed','skipped')),
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plans_group_date ON plans(group_id, plan_date)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_content ON plans(plan_content_id)`,

	`CREATE TABLE IF NOT EXISTS reschedule_logs (
		id             TEXT PRIMARY KEY,
		group_id       TEXT NOT NULL REFERENCES plan_groups(id) ON DELETE CASCADE,
		student_id     TEXT NOT NULL,
		adjustments    TEXT NOT NULL DEFAULT '[]',
		subjects       TEXT NOT NULL DEFAULT '[]',
		affected_dates TEXT NOT NULL DEFAULT '[]',
		plans_before   INTEGER NOT NULL DEFAULT 0,
		plans_after    INTEGER NOT NULL DEFAULT 0,
		reason         TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reschedule_logs_group ON reschedule_logs(group_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS plan_history (
		id                TEXT PRIMARY KEY,
		plan_id           TEXT NOT NULL,
		group_id          TEXT NOT NULL REFERENCES plan_groups(id) ON DELETE CASCADE,
		snapshot          TEXT NOT NULL,
		reschedule_log_id TEXT REFERENCES reschedule_logs(id) ON DELETE SET NULL,
		created_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_history_plan ON plan_history(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_history_log ON plan_history(reschedule_log_id)`,

	// Optimistic concurrency for reschedule commits.
	`ALTER TABLE plan_groups ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,

	// Order of plans sharing a date.
	`ALTER TABLE plans ADD COLUMN sequence INTEGER NOT NULL DEFAULT 0`,

	// Lunch window kept free on every scheduled day.
	`ALTER TABLE plan_groups ADD COLUMN lunch_start TEXT`,
	`ALTER TABLE plan_groups ADD COLUMN lunch_end TEXT`,

	`CREATE TABLE IF NOT EXISTS academy_schedules (
		id             TEXT PRIMARY KEY,
		group_id       TEXT NOT NULL REFERENCES plan_groups(id) ON DELETE CASCADE,
		day_of_week    INTEGER NOT NULL CHECK(day_of_week BETWEEN 0 AND 6),
		start_time     TEXT NOT NULL,
		end_time       TEXT NOT NULL,
		academy_name   TEXT NOT NULL DEFAULT '',
		subject        TEXT NOT NULL DEFAULT '',
		travel_minutes INTEGER NOT NULL DEFAULT 60 CHECK(travel_minutes >= 0)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_academy_schedules_group ON academy_schedules(group_id)`,

	`ALTER TABLE reschedule_logs ADD COLUMN status TEXT NOT NULL DEFAULT 'completed'
		CHECK(status IN ('completed','rolled_back'))`,
}

// migrateBackfillPlanSequence numbers plans that predate the sequence
// column: within each (group, date) whose rows all have sequence 0, rows
// are numbered by start time. Dates with a single plan need nothing.
func migrateBackfillPlanSequence(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT group_id, plan_date FROM plans
		GROUP BY group_id, plan_date
		HAVING COUNT(*) > 1 AND MAX(sequence) = 0`)
	if err != nil {
		return fmt.Errorf("listing unsequenced dates: %w", err)
	}
	type groupDate struct{ group, date string }
	var pending []groupDate
	for rows.Next() {
		var gd groupDate
		if err := rows.Scan(&gd.group, &gd.date); err != nil {
			rows.Close()
			return fmt.Errorf("scanning unsequenced date: %w", err)
		}
		pending = append(pending, gd)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating unsequenced dates: %w", err)
	}

	for _, gd := range pending {
		ids, err := planIDsByStart(ctx, db, gd.group, gd.date)
		if err != nil {
			return err
		}
		for seq, id := range ids {
			if _, err := db.ExecContext(ctx, `UPDATE plans SET sequence = ? WHERE id = ?`, seq, id); err != nil {
				return fmt.Errorf("updating plan sequence: %w", err)
			}
		}
	}
	return nil
}

func planIDsByStart(ctx context.Context, db *sql.DB, groupID, date string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id FROM plans WHERE group_id = ? AND plan_date = ? ORDER BY start_time, id`, groupID, date)
	if err != nil {
		return nil, fmt.Errorf("listing plans for %s: %w", date, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
