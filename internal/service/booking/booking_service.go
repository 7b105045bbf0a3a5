package booking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/kafka"
	"github.com/Domenick1991/classbooking/internal/repository"
	"github.com/Domenick1991/classbooking/internal/window"
)

const defaultUserName = "Member"

type BookingUseCase interface {
	Book(ctx context.Context, callerID string, input BookInput) (*domain.Booking, error)
	Cancel(ctx context.Context, callerID, classID string) (*domain.Booking, error)
	ListMine(ctx context.Context, callerID string) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateWeekOf(ctx context.Context, t time.Time) error
}

type BookInput struct {
	ClassID  string `json:"classId"`
	UserName string `json:"userName"`
}

type BookingService struct {
	store              repository.Store
	bookings           repository.BookingRepository
	policy             window.Policy
	cache              Cache
	producer           kafka.Publisher
	bookingTopic       string
	notificationsTopic string
	timeout            time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer kafka.Publisher, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithTimeout(timeout time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.timeout = timeout
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	store repository.Store,
	bookings repository.BookingRepository,
	policy window.Policy,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		store:    store,
		bookings: bookings,
		policy:   policy,
		timeout:  3 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book claims one seat of a class for the caller. Every check runs against
// the same transactional snapshot as the write, so the seat count can never
// pass capacity however many members race for the last seat.
func (s *BookingService) Book(ctx context.Context, callerID string, input BookInput) (*domain.Booking, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.ValidIDPart(callerID) {
		return nil, domain.InvalidArgument("userId is not usable in booking ids")
	}
	if input.ClassID == "" {
		return nil, domain.InvalidArgument("classId is required")
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		booked *domain.Booking
		class  *domain.ClassInstance
	)
	err := s.store.InTx(opCtx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.GetClass(ctx, input.ClassID)
		if err != nil {
			return err
		}
		if c.Status == domain.ClassStatusCancelled {
			return domain.ErrClassCancelled
		}

		now := s.now()
		if !s.policy.Evaluate(c.StartTime.In(c.Zone()), now).Bookable() {
			return domain.ErrBookingClosed
		}
		if c.Capacity <= 0 {
			return domain.ErrInvalidCapacity
		}

		id := domain.BookingID(c.ID, callerID)
		existing, err := tx.GetBooking(ctx, id)
		switch {
		case err == nil && existing.IsActive():
			return domain.ErrAlreadyBooked
		case err != nil && !errors.Is(err, domain.ErrBookingNotFound):
			return err
		}
		if c.BookedCount >= c.Capacity {
			return domain.ErrClassFull
		}

		name, err := s.displayName(ctx, tx, callerID, input.UserName)
		if err != nil {
			return err
		}

		// A fresh record: re-booking after a cancel clears the old
		// cancellation and attendance state under the same id.
		b := &domain.Booking{
			ID:        id,
			ClassID:   c.ID,
			UserID:    callerID,
			UserName:  name,
			Status:    domain.BookingStatusBooked,
			CreatedAt: now,
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		if err := tx.AdjustBookedCount(ctx, c.ID, 1); err != nil {
			return err
		}
		booked, class = b, c
		return nil
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	s.afterCommit(ctx, kafka.EventBooked, booked, class)
	return booked, nil
}

// Cancel releases the caller's seat. Members may cancel after the booking
// window closes but not once the class has started.
func (s *BookingService) Cancel(ctx context.Context, callerID, classID string) (*domain.Booking, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if classID == "" {
		return nil, domain.InvalidArgument("classId is required")
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		cancelled *domain.Booking
		class     *domain.ClassInstance
		floored   bool
	)
	err := s.store.InTx(opCtx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.GetClass(ctx, classID)
		if errors.Is(err, domain.ErrClassNotFound) {
			return domain.ErrNoActiveBooking
		}
		if err != nil {
			return err
		}

		b, err := tx.GetBooking(ctx, domain.BookingID(classID, callerID))
		if errors.Is(err, domain.ErrBookingNotFound) {
			return domain.ErrNoActiveBooking
		}
		if err != nil {
			return err
		}
		if !b.IsActive() {
			return domain.ErrNoActiveBooking
		}

		now := s.now()
		if !now.Before(c.StartTime) {
			return domain.ErrClassStarted
		}

		b.Status = domain.BookingStatusCancelled
		b.CancelledAt = &now
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		if err := tx.AdjustBookedCount(ctx, classID, -1); err != nil {
			return err
		}
		cancelled, class, floored = b, c, c.BookedCount <= 0
		return nil
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	if floored {
		log.Printf("WARNING: booked count of class %s was already 0 when booking %s was cancelled", classID, cancelled.ID)
	}
	s.afterCommit(ctx, kafka.EventCancelled, cancelled, class)
	return cancelled, nil
}

func (s *BookingService) ListMine(ctx context.Context, callerID string) ([]domain.Booking, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	bookings, err := s.bookings.ListActiveByUser(ctx, callerID)
	if err != nil {
		return nil, domain.AsError(err)
	}
	return bookings, nil
}

// displayName prefers the stored profile name over whatever the client sent.
func (s *BookingService) displayName(ctx context.Context, tx repository.Tx, userID, fallback string) (string, error) {
	profile, err := tx.GetProfile(ctx, userID)
	switch {
	case err == nil && strings.TrimSpace(profile.Name) != "":
		return strings.TrimSpace(profile.Name), nil
	case err != nil && !errors.Is(err, domain.ErrProfileNotFound):
		return "", err
	}
	if name := strings.TrimSpace(fallback); name != "" {
		return name, nil
	}
	return defaultUserName, nil
}

// afterCommit runs once the transaction is durable. Failures here are logged
// and never undo the booking.
func (s *BookingService) afterCommit(ctx context.Context, eventType string, b *domain.Booking, c *domain.ClassInstance) {
	if s.cache != nil {
		if err := s.cache.InvalidateWeekOf(ctx, c.StartTime); err != nil {
			log.Printf("WARNING: failed to invalidate schedule for class %s: %v", c.ID, err)
		}
	}
	event := kafka.NewBookingEvent(eventType, b, c, b.UserID, s.now())
	if err := kafka.Emit(ctx, s.producer, event, s.bookingTopic, s.notificationsTopic); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, b.ID, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
