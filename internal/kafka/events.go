package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
)

const (
	EventBooked    = "booking_booked"
	EventCancelled = "booking_cancelled"
	EventCheckedIn = "booking_checked_in"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	ClassID    string    `json:"class_id"`
	ClassTitle string    `json:"class_title,omitempty"`
	ClassStart time.Time `json:"class_start"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"`
	Status     string    `json:"status"`
	Attended   bool      `json:"attended"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, c *domain.ClassInstance, actorID string, at time.Time) BookingEvent {
	event := BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ClassID:    b.ClassID,
		UserID:     b.UserID,
		UserName:   b.UserName,
		Status:     string(b.Status),
		Attended:   b.Attended,
		ActorID:    actorID,
		OccurredAt: at,
	}
	if c != nil {
		event.ClassTitle = c.Title
		event.ClassStart = c.StartTime
	}
	return event
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Emit sends event to every non-empty topic, keyed by booking id. All topics
// are attempted; the errors are joined.
func Emit(ctx context.Context, p Publisher, event BookingEvent, topics ...string) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		if err := p.Publish(ctx, topic, event.BookingID, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
