package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

type PGStore struct {
	db         *pgxpool.Pool
	maxRetries int
}

func NewStore(db *pgxpool.Pool, maxRetries int) Store {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &PGStore{db: db, maxRetries: maxRetries}
}

func (s *PGStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return domain.Wrap(domain.ErrTransient, err)
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return domain.Wrap(domain.ErrTransient, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * 15 * time.Millisecond):
		}
	}
	return domain.Wrap(domain.ErrTransient, lastErr)
}

func (s *PGStore) runOnce(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isRetryable reports conflicts the database resolved by aborting us.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetClass(ctx context.Context, id string) (*domain.ClassInstance, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+classColumns+` FROM class_instances WHERE id=$1 FOR UPDATE`, id)
	return scanClass(row)
}

func (t *pgTx) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id)
	return scanBooking(row)
}

func (t *pgTx) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, userID)
	return scanProfile(row)
}

func (t *pgTx) SaveBooking(ctx context.Context, b *domain.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
        INSERT INTO bookings (id, class_id, user_id, user_name, status, created_at, cancelled_at, attended, checked_in_at, checked_in_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
        ON CONFLICT (id) DO UPDATE SET
            user_name = EXCLUDED.user_name,
            status = EXCLUDED.status,
            created_at = EXCLUDED.created_at,
            cancelled_at = EXCLUDED.cancelled_at,
            attended = EXCLUDED.attended,
            checked_in_at = EXCLUDED.checked_in_at,
            checked_in_by = EXCLUDED.checked_in_by
    `, b.ID, b.ClassID, b.UserID, b.UserName, b.Status, b.CreatedAt, b.CancelledAt, b.Attended, b.CheckedInAt, b.CheckedInBy)
	if err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

func (t *pgTx) AdjustBookedCount(ctx context.Context, classID string, delta int) error {
	cmd, err := t.tx.Exec(ctx, `
        UPDATE class_instances
        SET booked_count = GREATEST(booked_count + $2, 0),
            updated_at = now()
        WHERE id = $1
    `, classID, delta)
	if err != nil {
		return fmt.Errorf("adjust booked_count: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrClassNotFound
	}
	return nil
}

var _ Store = (*PGStore)(nil)
