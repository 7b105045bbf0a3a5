package domain

import "time"

// ClassTemplate is a recurring class definition. The generator expands active
// templates into dated ClassInstance records.
type ClassTemplate struct {
	ID              string    `json:"id" validate:"required"`
	Title           string    `json:"title" validate:"required,max=120"`
	DayOfWeek       int       `json:"day_of_week" validate:"min=0,max=6"` // 0 = Sunday
	StartTime       string    `json:"start_time" validate:"required,clock"`
	DurationMinutes int       `json:"duration_minutes" validate:"gt=0,lte=1440"`
	Timezone        string    `json:"timezone" validate:"omitempty,timezone"`
	CoachID         string    `json:"coach_id"`
	CoachName       string    `json:"coach_name"`
	Capacity        int       `json:"capacity" validate:"gt=0"`
	Location        string    `json:"location"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (t *ClassTemplate) Validate() error {
	return validateStruct(t)
}

// Weekday returns the template's day as a time.Weekday.
func (t *ClassTemplate) Weekday() time.Weekday {
	return time.Weekday(t.DayOfWeek)
}
