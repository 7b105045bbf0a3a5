// Package attendance records check-ins and projects class rosters for
// staff. Both operations are restricted to privileged callers.
package attendance

import (
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/classbooking/internal/auth"
	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/kafka"
	"github.com/Domenick1991/classbooking/internal/repository"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type AttendanceUseCase interface {
	CheckIn(ctx context.Context, callerID string, input CheckInInput) (*domain.Booking, error)
	Roster(ctx context.Context, callerID, classID string) (*Roster, error)
}

// CheckInInput names the booking either directly or by (ClassID, UserID).
type CheckInInput struct {
	BookingID string `json:"bookingId"`
	ClassID   string `json:"classId"`
	UserID    string `json:"userId"`
	Attended  bool   `json:"attended"`
}

type RosterEntry struct {
	UserID      string     `json:"userId"`
	UserName    string     `json:"userName"`
	Attended    bool       `json:"attended"`
	CheckedInAt *time.Time `json:"checkedInAt"`
}

type Roster struct {
	ClassID        string        `json:"classId"`
	Total          int           `json:"total"`
	CheckedInCount int           `json:"checkedInCount"`
	Attendees      []RosterEntry `json:"attendees"`
}

type AttendanceService struct {
	store              repository.Store
	bookings           repository.BookingRepository
	classes            repository.ClassRepository
	roles              auth.RoleLookup
	locale             language.Tag
	producer           kafka.Publisher
	bookingTopic       string
	notificationsTopic string
	timeout            time.Duration
	now                func() time.Time
}

type AttendanceServiceOption func(*AttendanceService)

func WithLocale(tag language.Tag) AttendanceServiceOption {
	return func(s *AttendanceService) {
		s.locale = tag
	}
}

func WithProducer(producer kafka.Publisher, bookingTopic, notificationsTopic string) AttendanceServiceOption {
	return func(s *AttendanceService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithTimeout(timeout time.Duration) AttendanceServiceOption {
	return func(s *AttendanceService) {
		s.timeout = timeout
	}
}

func WithClock(now func() time.Time) AttendanceServiceOption {
	return func(s *AttendanceService) {
		s.now = now
	}
}

func NewAttendanceService(
	store repository.Store,
	bookings repository.BookingRepository,
	classes repository.ClassRepository,
	roles auth.RoleLookup,
	opts ...AttendanceServiceOption,
) *AttendanceService {
	s := &AttendanceService{
		store:    store,
		bookings: bookings,
		classes:  classes,
		roles:    roles,
		locale:   language.BritishEnglish,
		timeout:  3 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn sets or clears attendance on an active booking. Repeating a call
// with the same value changes nothing; flipping the value is how staff
// correct a mistaken check-in.
func (s *AttendanceService) CheckIn(ctx context.Context, callerID string, input CheckInInput) (*domain.Booking, error) {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return nil, err
	}
	bookingID, err := input.bookingID()
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		result  *domain.Booking
		changed bool
	)
	err = s.store.InTx(opCtx, func(ctx context.Context, tx repository.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsActive() {
			return domain.ErrInvalidState
		}
		if b.CheckedInAt != nil && b.Attended == input.Attended {
			result, changed = b, false
			return nil
		}

		now := s.now()
		b.Attended = input.Attended
		b.CheckedInAt = &now
		b.CheckedInBy = callerID
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		result, changed = b, true
		return nil
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	if changed {
		s.publish(ctx, result, callerID)
	}
	return result, nil
}

func (in CheckInInput) bookingID() (string, error) {
	if id := strings.TrimSpace(in.BookingID); id != "" {
		return id, nil
	}
	classID, userID := strings.TrimSpace(in.ClassID), strings.TrimSpace(in.UserID)
	if classID == "" || userID == "" {
		return "", domain.InvalidArgument("bookingId or (classId and userId) required")
	}
	return domain.BookingID(classID, userID), nil
}

// Roster lists the active bookings of a class ordered by display name in the
// studio locale. A class with no bookings, or one that does not exist, has
// an empty roster.
func (s *AttendanceService) Roster(ctx context.Context, callerID, classID string) (*Roster, error) {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return nil, err
	}
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, domain.InvalidArgument("classId is required")
	}

	bookings, err := s.bookings.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, domain.AsError(err)
	}

	roster := &Roster{ClassID: classID, Attendees: make([]RosterEntry, 0, len(bookings))}
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		roster.Attendees = append(roster.Attendees, RosterEntry{
			UserID:      b.UserID,
			UserName:    b.UserName,
			Attended:    b.Attended,
			CheckedInAt: b.CheckedInAt,
		})
		if b.Attended {
			roster.CheckedInCount++
		}
	}
	roster.Total = len(roster.Attendees)

	// Collators keep internal buffers and are not safe to share.
	col := collate.New(s.locale)
	slices.SortFunc(roster.Attendees, func(a, b RosterEntry) int {
		if c := col.CompareString(a.UserName, b.UserName); c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	return roster, nil
}

func (s *AttendanceService) publish(ctx context.Context, b *domain.Booking, actorID string) {
	if s.producer == nil {
		return
	}
	class, err := s.classes.GetByID(ctx, b.ClassID)
	if err != nil && !errors.Is(err, domain.ErrClassNotFound) {
		log.Printf("WARNING: failed to load class %s for check-in event: %v", b.ClassID, err)
	}
	event := kafka.NewBookingEvent(kafka.EventCheckedIn, b, class, actorID, s.now())
	if err := kafka.Emit(ctx, s.producer, event, s.bookingTopic, s.notificationsTopic); err != nil {
		log.Printf("WARNING: failed to publish check-in event for booking %s: %v", b.ID, err)
	}
}

var _ AttendanceUseCase = (*AttendanceService)(nil)
