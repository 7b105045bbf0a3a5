package repository

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

const (
	templateColumns = `id, title, day_of_week, start_time, duration_minutes, timezone, coach_id, coach_name, capacity, location, is_active, created_at, updated_at`
	classColumns    = `id, template_id, title, timezone, start_time, end_time, coach_id, coach_name, capacity, booked_count, location, status, created_at, updated_at`
	bookingColumns  = `id, class_id, user_id, user_name, status, created_at, cancelled_at, attended, checked_in_at, COALESCE(checked_in_by, '')`
	profileColumns  = `id, name, email, role, created_at, updated_at`
)

// Records are validated as they leave storage; rows that do not satisfy the
// domain schema are rejected instead of being patched up by callers.

// Templates are returned as stored: the generator tolerates a malformed
// start time and falls back to midnight.
func scanTemplate(row pgx.Row) (*domain.ClassTemplate, error) {
	var t domain.ClassTemplate
	if err := row.Scan(&t.ID, &t.Title, &t.DayOfWeek, &t.StartTime, &t.DurationMinutes, &t.Timezone, &t.CoachID, &t.CoachName, &t.Capacity, &t.Location, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}
	return &t, nil
}

func scanClass(row pgx.Row) (*domain.ClassInstance, error) {
	var c domain.ClassInstance
	if err := row.Scan(&c.ID, &c.TemplateID, &c.Title, &c.Timezone, &c.StartTime, &c.EndTime, &c.CoachID, &c.CoachName, &c.Capacity, &c.BookedCount, &c.Location, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClassNotFound
		}
		return nil, fmt.Errorf("scan class: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, domain.Malformed("class", c.ID, err)
	}
	return &c, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ClassID, &b.UserID, &b.UserName, &b.Status, &b.CreatedAt, &b.CancelledAt, &b.Attended, &b.CheckedInAt, &b.CheckedInBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, domain.Malformed("booking", b.ID, err)
	}
	return &b, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, domain.Malformed("profile", p.ID, err)
	}
	return &p, nil
}
