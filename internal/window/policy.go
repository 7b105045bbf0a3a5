// Package window decides whether a class instance can still be booked.
package window

import (
	"encoding/json"
	"time"
)

type State string

const (
	StateOpen    State = "open"
	StateClosed  State = "closed"
	StateStarted State = "started"
)

// Cutoff is a wall-clock time of day.
type Cutoff struct {
	Hour   int
	Minute int
}

// Policy closes bookings for early-morning classes the evening before, for
// evening classes at a fixed time the same day, and for anything else a
// fixed lead time before the start.
type Policy struct {
	MorningHour   int
	MorningCutoff Cutoff // previous day
	EveningHour   int
	EveningCutoff Cutoff // same day
	Lead          time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MorningHour:   6,
		MorningCutoff: Cutoff{Hour: 20, Minute: 30},
		EveningHour:   18,
		EveningCutoff: Cutoff{Hour: 15},
		Lead:          2 * time.Hour,
	}
}

type Status struct {
	State     State
	ClosesAt  time.Time
	Remaining time.Duration // only set while open
}

func (s Status) Bookable() bool {
	return s.State == StateOpen
}

func (s Status) MarshalJSON() ([]byte, error) {
	out := struct {
		State    State     `json:"state"`
		ClosesAt time.Time `json:"closes_at"`
		MsLeft   *int64    `json:"ms_left,omitempty"`
	}{State: s.State, ClosesAt: s.ClosesAt}
	if s.State == StateOpen {
		ms := s.Remaining.Milliseconds()
		out.MsLeft = &ms
	}
	return json.Marshal(out)
}

// ClosesAt computes when booking closes. The start hour is read in start's
// own location, so callers pass the start converted to the class timezone.
func (p Policy) ClosesAt(start time.Time) time.Time {
	loc := start.Location()
	y, m, d := start.Date()

	switch start.Hour() {
	case p.MorningHour:
		return time.Date(y, m, d-1, p.MorningCutoff.Hour, p.MorningCutoff.Minute, 0, 0, loc)
	case p.EveningHour:
		return time.Date(y, m, d, p.EveningCutoff.Hour, p.EveningCutoff.Minute, 0, 0, loc)
	default:
		return start.Add(-p.Lead)
	}
}

// Evaluate has no side effects; booking paths call it again at commit time
// because a client's view may be stale.
func (p Policy) Evaluate(start, now time.Time) Status {
	closes := p.ClosesAt(start)
	switch {
	case !now.Before(start):
		return Status{State: StateStarted, ClosesAt: closes}
	case !now.Before(closes):
		return Status{State: StateClosed, ClosesAt: closes}
	default:
		return Status{State: StateOpen, ClosesAt: closes, Remaining: closes.Sub(now)}
	}
}
