package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &PGProfileRepository{db: db}
}

func (r *PGProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id))
}

func (r *PGProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, `
        INSERT INTO profiles (id, name, email, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email, role=EXCLUDED.role, updated_at=now()
        RETURNING created_at, updated_at
    `, p.ID, p.Name, p.Email, p.Role).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *PGProfileRepository) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	p, err := r.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.RoleUser, nil
		}
		return "", err
	}
	return p.Role, nil
}

var _ ProfileRepository = (*PGProfileRepository)(nil)
