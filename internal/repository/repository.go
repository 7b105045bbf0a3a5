package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
)

// Tx is the transactional view used by the booking engine and check-in.
// Everything read through a Tx belongs to one snapshot and every write
// commits together or not at all.
type Tx interface {
	// GetClass locks the instance row for the rest of the transaction.
	GetClass(ctx context.Context, id string) (*domain.ClassInstance, error)
	// GetBooking returns domain.ErrBookingNotFound when no record exists.
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	// GetProfile returns domain.ErrProfileNotFound when no record exists.
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	SaveBooking(ctx context.Context, booking *domain.Booking) error
	// AdjustBookedCount applies delta atomically, never going below zero.
	AdjustBookedCount(ctx context.Context, classID string, delta int) error
}

// Store runs fn inside a serializable transaction. fn may be invoked more
// than once when the storage layer retries a conflicting commit, so it must
// not have side effects outside tx. Exhausted retries and expired deadlines
// surface as domain.ErrTransient.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type TemplateRepository interface {
	List(ctx context.Context) ([]domain.ClassTemplate, error)
	ListActive(ctx context.Context) ([]domain.ClassTemplate, error)
	GetByID(ctx context.Context, id string) (*domain.ClassTemplate, error)
	Create(ctx context.Context, template *domain.ClassTemplate) error
	Update(ctx context.Context, template *domain.ClassTemplate) error
	SetActive(ctx context.Context, id string, active bool) (*domain.ClassTemplate, error)
	Delete(ctx context.Context, id string) error
}

type ClassRepository interface {
	// CreateIfAbsent reports false when an instance with the same id exists.
	CreateIfAbsent(ctx context.Context, class *domain.ClassInstance) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.ClassInstance, error)
	// ListBetween returns instances with from <= start < to ordered by start.
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.ClassInstance, error)
}

type BookingRepository interface {
	ListActiveByClass(ctx context.Context, classID string) ([]domain.Booking, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, profile *domain.Profile) error
	// GetRole treats a missing profile as an ordinary member.
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}
