package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) ListActiveByClass(ctx context.Context, classID string) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE class_id=$1 AND status=$2`, classID, domain.BookingStatusBooked)
}

func (r *PGBookingRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 AND status=$2 ORDER BY class_id`, userID, domain.BookingStatusBooked)
}

func (r *PGBookingRepository) list(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
