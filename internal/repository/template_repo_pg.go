package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGTemplateRepository struct {
	db *pgxpool.Pool
}

func NewTemplateRepository(db *pgxpool.Pool) TemplateRepository {
	return &PGTemplateRepository{db: db}
}

func (r *PGTemplateRepository) List(ctx context.Context) ([]domain.ClassTemplate, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM class_templates ORDER BY day_of_week, start_time`)
}

func (r *PGTemplateRepository) ListActive(ctx context.Context) ([]domain.ClassTemplate, error) {
	return r.query(ctx, `SELECT `+templateColumns+` FROM class_templates WHERE is_active ORDER BY day_of_week, start_time`)
}

func (r *PGTemplateRepository) query(ctx context.Context, sql string, args ...any) ([]domain.ClassTemplate, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]domain.ClassTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (r *PGTemplateRepository) GetByID(ctx context.Context, id string) (*domain.ClassTemplate, error) {
	return scanTemplate(r.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM class_templates WHERE id=$1`, id))
}

func (r *PGTemplateRepository) Create(ctx context.Context, t *domain.ClassTemplate) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO class_templates (id, title, day_of_week, start_time, duration_minutes, timezone, coach_id, coach_name, capacity, location, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at, updated_at
    `, t.ID, t.Title, t.DayOfWeek, t.StartTime, t.DurationMinutes, t.Timezone, t.CoachID, t.CoachName, t.Capacity, t.Location, t.IsActive).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (r *PGTemplateRepository) Update(ctx context.Context, t *domain.ClassTemplate) error {
	err := r.db.QueryRow(ctx, `
        UPDATE class_templates
        SET title=$2, day_of_week=$3, start_time=$4, duration_minutes=$5, timezone=$6,
            coach_id=$7, coach_name=$8, capacity=$9, location=$10, is_active=$11, updated_at=now()
        WHERE id=$1
        RETURNING created_at, updated_at
    `, t.ID, t.Title, t.DayOfWeek, t.StartTime, t.DurationMinutes, t.Timezone, t.CoachID, t.CoachName, t.Capacity, t.Location, t.IsActive).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTemplateNotFound
		}
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

func (r *PGTemplateRepository) SetActive(ctx context.Context, id string, active bool) (*domain.ClassTemplate, error) {
	return scanTemplate(r.db.QueryRow(ctx, `UPDATE class_templates SET is_active=$2, updated_at=now() WHERE id=$1 RETURNING `+templateColumns, id, active))
}

func (r *PGTemplateRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM class_templates WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

var _ TemplateRepository = (*PGTemplateRepository)(nil)
