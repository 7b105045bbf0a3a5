// Package schedule owns the class timetable: recurring templates, the
// occurrence generator that expands them, and the weekly schedule view.
package schedule

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/classbooking/internal/auth"
	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/repository"
	"github.com/Domenick1991/classbooking/internal/window"
)

type ScheduleUseCase interface {
	Week(ctx context.Context, at time.Time) (*WeekSchedule, error)
	GenerateOccurrences(ctx context.Context, callerID string, daysAhead *int) (GenerateResult, error)
}

type Cache interface {
	GetSchedule(ctx context.Context, weekStart time.Time) ([]domain.ClassInstance, error)
	SetSchedule(ctx context.Context, weekStart time.Time, classes []domain.ClassInstance) error
	InvalidateWeekOf(ctx context.Context, t time.Time) error
}

type ClassView struct {
	domain.ClassInstance
	SeatsLeft int           `json:"seats_left"`
	Window    window.Status `json:"window"`
}

type WeekSchedule struct {
	WeekStart time.Time   `json:"week_start"`
	WeekEnd   time.Time   `json:"week_end"`
	Classes   []ClassView `json:"classes"`
}

type ScheduleService struct {
	classes   repository.ClassRepository
	generator *Generator
	roles     auth.RoleLookup
	cache     Cache
	policy    window.Policy
	home      *time.Location
	now       func() time.Time
}

type ScheduleServiceOption func(*ScheduleService)

func WithCache(cache Cache) ScheduleServiceOption {
	return func(s *ScheduleService) {
		s.cache = cache
	}
}

func WithClock(now func() time.Time) ScheduleServiceOption {
	return func(s *ScheduleService) {
		s.now = now
	}
}

func NewScheduleService(
	classes repository.ClassRepository,
	generator *Generator,
	roles auth.RoleLookup,
	policy window.Policy,
	home *time.Location,
	opts ...ScheduleServiceOption,
) *ScheduleService {
	if home == nil {
		home = time.UTC
	}
	s := &ScheduleService{
		classes:   classes,
		generator: generator,
		roles:     roles,
		policy:    policy,
		home:      home,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Week lists the scheduled classes of the studio week (Monday to Monday, home
// timezone) containing at, each with its booking window evaluated now.
func (s *ScheduleService) Week(ctx context.Context, at time.Time) (*WeekSchedule, error) {
	start := domain.WeekStart(at.In(s.home))
	end := start.AddDate(0, 0, 7)

	classes, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := &WeekSchedule{WeekStart: start, WeekEnd: end, Classes: make([]ClassView, 0, len(classes))}
	for _, c := range classes {
		if c.Status != domain.ClassStatusScheduled {
			continue
		}
		out.Classes = append(out.Classes, ClassView{
			ClassInstance: c,
			SeatsLeft:     c.SeatsLeft(),
			Window:        s.policy.Evaluate(c.StartTime.In(c.Zone()), now),
		})
	}
	return out, nil
}

func (s *ScheduleService) load(ctx context.Context, start, end time.Time) ([]domain.ClassInstance, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSchedule(ctx, start)
		if err != nil {
			log.Printf("schedule: cache read %s: %v", start.Format(time.DateOnly), err)
		} else if cached != nil {
			return cached, nil
		}
	}

	classes, err := s.classes.ListBetween(ctx, start, end)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if s.cache != nil {
		if err := s.cache.SetSchedule(ctx, start, classes); err != nil {
			log.Printf("schedule: cache write %s: %v", start.Format(time.DateOnly), err)
		}
	}
	return classes, nil
}

// GenerateOccurrences is the on-demand, staff-only entry to the generator.
// A nil daysAhead means DefaultDaysAhead.
func (s *ScheduleService) GenerateOccurrences(ctx context.Context, callerID string, daysAhead *int) (GenerateResult, error) {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return GenerateResult{}, err
	}
	days := DefaultDaysAhead
	if daysAhead != nil {
		days = *daysAhead
	}
	return s.generator.Generate(ctx, days)
}

var _ ScheduleUseCase = (*ScheduleService)(nil)
