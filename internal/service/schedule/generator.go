package schedule

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/repository"
)

const (
	DefaultDaysAhead       = 28
	MaxDaysAhead           = 366
	defaultDurationMinutes = 60
)

type GenerateResult struct {
	CreatedCount int `json:"createdCount"`
	SkippedCount int `json:"skippedCount"`
}

type Generator struct {
	templates repository.TemplateRepository
	classes   repository.ClassRepository
	cache     Cache
	home      *time.Location
	now       func() time.Time
}

type GeneratorOption func(*Generator)

func WithGeneratorCache(cache Cache) GeneratorOption {
	return func(g *Generator) {
		g.cache = cache
	}
}

func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(templates repository.TemplateRepository, classes repository.ClassRepository, home *time.Location, opts ...GeneratorOption) *Generator {
	if home == nil {
		home = time.UTC
	}
	g := &Generator{
		templates: templates,
		classes:   classes,
		home:      home,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate creates the instances of every active template that fall within
// daysAhead days of today, counted in each template's own timezone. Instances
// that already exist are skipped, so repeated runs are harmless.
func (g *Generator) Generate(ctx context.Context, daysAhead int) (GenerateResult, error) {
	var res GenerateResult
	if daysAhead < 0 || daysAhead > MaxDaysAhead {
		return res, domain.InvalidArgument("daysAhead must be between 0 and 366")
	}

	templates, err := g.templates.ListActive(ctx)
	if err != nil {
		return res, domain.Internal(err)
	}

	now := g.now()
	weeks := make(map[string]time.Time)
	for i := range templates {
		t := &templates[i]
		if t.Capacity <= 0 {
			log.Printf("generator: skip template %s: capacity %d", t.ID, t.Capacity)
			continue
		}
		if !domain.ValidIDPart(t.ID) {
			log.Printf("generator: skip template %q: id not usable in class ids", t.ID)
			continue
		}

		for _, instance := range g.occurrences(t, now, daysAhead) {
			if err := ctx.Err(); err != nil {
				log.Printf("generator: stopped early: created=%d skipped=%d", res.CreatedCount, res.SkippedCount)
				return res, domain.Wrap(domain.ErrTransient, err)
			}
			created, err := g.create(ctx, instance)
			if err != nil {
				log.Printf("generator: class %s: %v", instance.ID, err)
				res.SkippedCount++
				continue
			}
			if !created {
				res.SkippedCount++
				continue
			}
			res.CreatedCount++
			week := domain.WeekStart(instance.StartTime.In(g.home))
			weeks[week.Format(time.DateOnly)] = week
		}
	}

	g.invalidate(ctx, weeks)
	log.Printf("generator: %d templates, %d days ahead: created=%d skipped=%d", len(templates), daysAhead, res.CreatedCount, res.SkippedCount)
	return res, nil
}

func (g *Generator) create(ctx context.Context, instance *domain.ClassInstance) (bool, error) {
	if err := instance.Validate(); err != nil {
		return false, err
	}
	return g.classes.CreateIfAbsent(ctx, instance)
}

// occurrences lists the instances of t for offsets 0..daysAhead from the
// current calendar day in t's timezone.
func (g *Generator) occurrences(t *domain.ClassTemplate, now time.Time, daysAhead int) []*domain.ClassInstance {
	loc, tz := g.templateZone(t)
	hour, minute := domain.ClockOrMidnight(t.StartTime)
	duration := t.DurationMinutes
	if duration <= 0 {
		duration = defaultDurationMinutes
	}

	y, m, d := now.In(loc).Date()
	var out []*domain.ClassInstance
	for i := 0; i <= daysAhead; i++ {
		day := time.Date(y, m, d+i, 12, 0, 0, 0, loc)
		if day.Weekday() != t.Weekday() {
			continue
		}
		dy, dm, dd := day.Date()
		start := time.Date(dy, dm, dd, hour, minute, 0, 0, loc)
		out = append(out, &domain.ClassInstance{
			ID:          domain.ClassID(t.ID, start),
			TemplateID:  t.ID,
			Title:       t.Title,
			Timezone:    tz,
			StartTime:   start,
			EndTime:     start.Add(time.Duration(duration) * time.Minute),
			CoachID:     t.CoachID,
			CoachName:   t.CoachName,
			Capacity:    t.Capacity,
			BookedCount: 0,
			Location:    t.Location,
			Status:      domain.ClassStatusScheduled,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return out
}

func (g *Generator) templateZone(t *domain.ClassTemplate) (*time.Location, string) {
	if t.Timezone != "" {
		if loc, err := time.LoadLocation(t.Timezone); err == nil {
			return loc, t.Timezone
		}
		log.Printf("generator: template %s: unknown timezone %q, using %s", t.ID, t.Timezone, g.home)
	}
	return g.home, g.home.String()
}

func (g *Generator) invalidate(ctx context.Context, weeks map[string]time.Time) {
	if g.cache == nil {
		return
	}
	for key, week := range weeks {
		if err := g.cache.InvalidateWeekOf(ctx, week); err != nil {
			log.Printf("generator: invalidate schedule %s: %v", key, err)
		}
	}
}
