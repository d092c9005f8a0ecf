package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLiteContentRepo implements ContentRepo using a SQLite database.
type SQLiteContentRepo struct {
	db db.DBTX
}

func NewSQLiteContentRepo(conn db.DBTX) *SQLiteContentRepo {
	return &SQLiteContentRepo{db: conn}
}

func (r *SQLiteContentRepo) Create(ctx context.Context, c *domain.PlanContent) error {
	query := `INSERT INTO plan_contents (id, group_id, content_type, content_id, start_range, end_range, subject, order_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.GroupID, string(c.ContentType), c.ContentID, c.StartRange, c.EndRange, c.Subject, c.Order)
	if err != nil {
		return fmt.Errorf("inserting plan content: %w", err)
	}
	return nil
}

func (r *SQLiteContentRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.PlanContent, error) {
	query := `SELECT id, group_id, content_type, content_id, start_range, end_range, subject, order_index
		FROM plan_contents WHERE group_id = ? ORDER BY order_index, id`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing plan contents: %w", err)
	}
	defer rows.Close()

	var out []domain.PlanContent
	for rows.Next() {
		var c domain.PlanContent
		var ct string
		if err := rows.Scan(&c.ID, &c.GroupID, &ct, &c.ContentID, &c.StartRange, &c.EndRange, &c.Subject, &c.Order); err != nil {
			return nil, fmt.Errorf("scanning plan content: %w", err)
		}
		c.ContentType = domain.ContentType(ct)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan contents: %w", err)
	}
	return out, nil
}

// Update rewrites the content reference and range. Replacements keep the
// row id so existing plans stay attached.
func (r *SQLiteContentRepo) Update(ctx context.Context, c *domain.PlanContent) error {
	query := `UPDATE plan_contents SET content_type = ?, content_id = ?, start_range = ?, end_range = ?,
		subject = ?, order_index = ? WHERE id = ? AND group_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(c.ContentType), c.ContentID, c.StartRange, c.EndRange, c.Subject, c.Order, c.ID, c.GroupID)
	if err != nil {
		return fmt.Errorf("updating plan content: %w", err)
	}
	return expectOne(res, fmt.Errorf("plan content %s: %w", c.ID, ErrNotFound))
}

// SQLiteDurationRepo implements DurationRepo using a SQLite database.
type SQLiteDurationRepo struct {
	db db.DBTX
}

func NewSQLiteDurationRepo(conn db.DBTX) *SQLiteDurationRepo {
	return &SQLiteDurationRepo{db: conn}
}

func (r *SQLiteDurationRepo) Upsert(ctx context.Context, info *domain.ContentDurationInfo) error {
	episodes, err := toJSON(nonNil(info.Episodes))
	if err != nil {
		return fmt.Errorf("encoding episodes: %w", err)
	}
	query := `INSERT INTO content_duration_info (content_type, content_id, difficulty, episodes, total_minutes, total_units)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_type, content_id) DO UPDATE SET
			difficulty = excluded.difficulty,
			episodes = excluded.episodes,
			total_minutes = excluded.total_minutes,
			total_units = excluded.total_units`
	_, err = r.db.ExecContext(ctx, query,
		string(info.ContentType), info.ContentID, info.Difficulty, episodes,
		nullableIntToValue(info.TotalMinutes), info.TotalUnits)
	if err != nil {
		return fmt.Errorf("upserting duration info: %w", err)
	}
	return nil
}

// ListForGroup returns the duration info of every content referenced by
// the group. Contents without a row are simply absent.
func (r *SQLiteDurationRepo) ListForGroup(ctx context.Context, groupID string) ([]domain.ContentDurationInfo, error) {
	query := `SELECT DISTINCT d.content_type, d.content_id, d.difficulty, d.episodes, d.total_minutes, d.total_units
		FROM content_duration_info d
		JOIN plan_contents c ON c.content_type = d.content_type AND c.content_id = d.content_id
		WHERE c.group_id = ?
		ORDER BY d.content_type, d.content_id`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing duration info: %w", err)
	}
	defer rows.Close()

	var out []domain.ContentDurationInfo
	for rows.Next() {
		var (
			d        domain.ContentDurationInfo
			ct, eps  string
			totalMin sql.NullInt64
		)
		if err := rows.Scan(&ct, &d.ContentID, &d.Difficulty, &eps, &totalMin, &d.TotalUnits); err != nil {
			return nil, fmt.Errorf("scanning duration info: %w", err)
		}
		d.ContentType = domain.ContentType(ct)
		if err := fromJSON(eps, &d.Episodes); err != nil {
			return nil, fmt.Errorf("decoding episodes of %s: %w", d.ContentID, err)
		}
		if len(d.Episodes) == 0 {
			d.Episodes = nil
		}
		if totalMin.Valid {
			v := int(totalMin.Int64)
			d.TotalMinutes = &v
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duration info: %w", err)
	}
	return out, nil
}
