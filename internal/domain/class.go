package domain

import "time"

type ClassStatus string

const (
	ClassStatusScheduled ClassStatus = "scheduled"
	ClassStatusCancelled ClassStatus = "cancelled"
)

// ClassInstance is one dated occurrence of a template. BookedCount is the
// capacity ledger and is only changed by the booking engine.
type ClassInstance struct {
	ID          string      `json:"id" validate:"required"`
	TemplateID  string      `json:"template_id" validate:"required"`
	Title       string      `json:"title"`
	Timezone    string      `json:"timezone" validate:"required,timezone"`
	StartTime   time.Time   `json:"start_time" validate:"required"`
	EndTime     time.Time   `json:"end_time" validate:"required,gtfield=StartTime"`
	CoachID     string      `json:"coach_id"`
	CoachName   string      `json:"coach_name"`
	Capacity    int         `json:"capacity"`
	BookedCount int         `json:"booked_count" validate:"min=0"`
	Location    string      `json:"location"`
	Status      ClassStatus `json:"status" validate:"oneof=scheduled cancelled"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (c *ClassInstance) Validate() error {
	return validateStruct(c)
}

func (c *ClassInstance) SeatsLeft() int {
	if left := c.Capacity - c.BookedCount; left > 0 {
		return left
	}
	return 0
}

func (c *ClassInstance) IsFull() bool {
	return c.BookedCount >= c.Capacity
}

// Zone resolves the instance timezone, falling back to UTC for names the
// runtime does not know.
func (c *ClassInstance) Zone() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
