package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGClassRepository struct {
	db *pgxpool.Pool
}

func NewClassRepository(db *pgxpool.Pool) ClassRepository {
	return &PGClassRepository{db: db}
}

func (r *PGClassRepository) CreateIfAbsent(ctx context.Context, c *domain.ClassInstance) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	cmd, err := r.db.Exec(ctx, `
        INSERT INTO class_instances (id, template_id, title, timezone, start_time, end_time, coach_id, coach_name, capacity, booked_count, location, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
        ON CONFLICT (id) DO NOTHING
    `, c.ID, c.TemplateID, c.Title, c.Timezone, c.StartTime, c.EndTime, c.CoachID, c.CoachName, c.Capacity, c.BookedCount, c.Location, c.Status, c.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert class %s: %w", c.ID, err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *PGClassRepository) GetByID(ctx context.Context, id string) (*domain.ClassInstance, error) {
	return scanClass(r.db.QueryRow(ctx, `SELECT `+classColumns+` FROM class_instances WHERE id=$1`, id))
}

func (r *PGClassRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.ClassInstance, error) {
	rows, err := r.db.Query(ctx, `SELECT `+classColumns+` FROM class_instances WHERE start_time >= $1 AND start_time < $2 ORDER BY start_time, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	classes := make([]domain.ClassInstance, 0)
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *c)
	}
	return classes, rows.Err()
}

var _ ClassRepository = (*PGClassRepository)(nil)
