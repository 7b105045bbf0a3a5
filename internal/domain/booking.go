package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a member's claim on one seat of one class instance. There is at
// most one record per (class, user); re-booking overwrites it.
type Booking struct {
	ID          string        `json:"id" validate:"required"`
	ClassID     string        `json:"class_id" validate:"required"`
	UserID      string        `json:"user_id" validate:"required"`
	UserName    string        `json:"user_name"`
	Status      BookingStatus `json:"status" validate:"oneof=booked cancelled"`
	CreatedAt   time.Time     `json:"created_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	Attended    bool          `json:"attended"`
	CheckedInAt *time.Time    `json:"checked_in_at,omitempty"`
	CheckedInBy string        `json:"checked_in_by,omitempty"`
}

func (b *Booking) Validate() error {
	return validateStruct(b)
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusBooked
}
