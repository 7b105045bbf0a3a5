package email

import (
	"context"
	"log"

	"github.com/Domenick1991/classbooking/internal/kafka"
)

// Sender turns booking events into member notifications. Delivery is a log
// line until a mail provider is configured.
type Sender struct {
	logf func(format string, args ...any)
}

func NewSender() *Sender {
	return &Sender{logf: log.Printf}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logf("notify %s: %s", event.UserID, Subject(event))
	return nil
}

func Subject(event kafka.BookingEvent) string {
	when := event.ClassStart.Format("Mon 2 Jan 15:04")
	switch event.Type {
	case kafka.EventBooked:
		return "You're booked into " + event.ClassTitle + " on " + when
	case kafka.EventCancelled:
		return "Your booking for " + event.ClassTitle + " on " + when + " was cancelled"
	case kafka.EventCheckedIn:
		if event.Attended {
			return "Checked in to " + event.ClassTitle
		}
		return "Check-in removed for " + event.ClassTitle
	default:
		return "Update for " + event.ClassTitle
	}
}
