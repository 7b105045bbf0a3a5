// Package memory is an in-process implementation of the repository
// interfaces. Transactions are serialized by a single mutex, which keeps the
// capacity ledger exact but puts every class behind the same lock; it is
// meant for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/repository"
)

type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	templates map[string]domain.ClassTemplate
	classes   map[string]domain.ClassInstance
	bookings  map[string]domain.Booking
	profiles  map[string]domain.Profile
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		templates: make(map[string]domain.ClassTemplate),
		classes:   make(map[string]domain.ClassInstance),
		bookings:  make(map[string]domain.Booking),
		profiles:  make(map[string]domain.Profile),
	}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Wrap(domain.ErrTransient, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{s: s, bookings: make(map[string]domain.Booking), deltas: make(map[string]int)}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Wrap(domain.ErrTransient, err)
	}
	t.commit()
	return nil
}

// tx stages writes and applies them only on commit.
type tx struct {
	s        *Store
	bookings map[string]domain.Booking
	deltas   map[string]int
}

func (t *tx) GetClass(_ context.Context, id string) (*domain.ClassInstance, error) {
	c, ok := t.s.classes[id]
	if !ok {
		return nil, domain.ErrClassNotFound
	}
	c.BookedCount = max(c.BookedCount+t.deltas[id], 0)
	return &c, nil
}

func (t *tx) GetBooking(_ context.Context, id string) (*domain.Booking, error) {
	if b, ok := t.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	b, ok := t.s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (t *tx) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	p, ok := t.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (t *tx) SaveBooking(_ context.Context, b *domain.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}
	t.bookings[b.ID] = *cloneBooking(*b)
	return nil
}

func (t *tx) AdjustBookedCount(_ context.Context, classID string, delta int) error {
	if _, ok := t.s.classes[classID]; !ok {
		return domain.ErrClassNotFound
	}
	t.deltas[classID] += delta
	return nil
}

func (t *tx) commit() {
	for id, b := range t.bookings {
		t.s.bookings[id] = b
	}
	now := t.s.now()
	for id, delta := range t.deltas {
		c := t.s.classes[id]
		c.BookedCount = max(c.BookedCount+delta, 0)
		c.UpdatedAt = now
		t.s.classes[id] = c
	}
}

func cloneBooking(b domain.Booking) *domain.Booking {
	if b.CancelledAt != nil {
		v := *b.CancelledAt
		b.CancelledAt = &v
	}
	if b.CheckedInAt != nil {
		v := *b.CheckedInAt
		b.CheckedInAt = &v
	}
	return &b
}

// Templates returns the template repository view of the store.
func (s *Store) Templates() repository.TemplateRepository { return templateRepo{s} }
func (s *Store) Classes() repository.ClassRepository     { return classRepo{s} }
func (s *Store) Bookings() repository.BookingRepository  { return bookingRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository  { return profileRepo{s} }

type templateRepo struct{ s *Store }

func (r templateRepo) List(_ context.Context) ([]domain.ClassTemplate, error) {
	return r.s.listTemplates(func(domain.ClassTemplate) bool { return true }), nil
}

func (r templateRepo) ListActive(_ context.Context) ([]domain.ClassTemplate, error) {
	return r.s.listTemplates(func(t domain.ClassTemplate) bool { return t.IsActive }), nil
}

func (s *Store) listTemplates(keep func(domain.ClassTemplate) bool) []domain.ClassTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ClassTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r templateRepo) GetByID(_ context.Context, id string) (*domain.ClassTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return &t, nil
}

func (r templateRepo) Create(_ context.Context, t *domain.ClassTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.templates[t.ID]; ok {
		return domain.ErrAlreadyExists
	}
	now := r.s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.templates[t.ID] = *t
	return nil
}

func (r templateRepo) Update(_ context.Context, t *domain.ClassTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.templates[t.ID]
	if !ok {
		return domain.ErrTemplateNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.s.now()
	r.s.templates[t.ID] = *t
	return nil
}

func (r templateRepo) SetActive(_ context.Context, id string, active bool) (*domain.ClassTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	t.IsActive = active
	t.UpdatedAt = r.s.now()
	r.s.templates[id] = t
	return &t, nil
}

func (r templateRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.templates[id]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(r.s.templates, id)
	return nil
}

type classRepo struct{ s *Store }

func (r classRepo) CreateIfAbsent(_ context.Context, c *domain.ClassInstance) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.classes[c.ID]; ok {
		return false, nil
	}
	stored := *c
	stored.UpdatedAt = stored.CreatedAt
	r.s.classes[c.ID] = stored
	return true, nil
}

func (r classRepo) GetByID(_ context.Context, id string) (*domain.ClassInstance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.classes[id]
	if !ok {
		return nil, domain.ErrClassNotFound
	}
	return &c, nil
}

func (r classRepo) ListBetween(_ context.Context, from, to time.Time) ([]domain.ClassInstance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.ClassInstance, 0)
	for _, c := range r.s.classes {
		if !c.StartTime.Before(from) && c.StartTime.Before(to) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) ListActiveByClass(_ context.Context, classID string) ([]domain.Booking, error) {
	return r.s.listBookings(func(b domain.Booking) bool { return b.ClassID == classID }), nil
}

func (r bookingRepo) ListActiveByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	return r.s.listBookings(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

func (s *Store) listBookings(keep func(domain.Booking) bool) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Booking, 0)
	for _, b := range s.bookings {
		if b.IsActive() && keep(b) {
			out = append(out, *cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type profileRepo struct{ s *Store }

func (r profileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (r profileRepo) Upsert(_ context.Context, p *domain.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.profiles[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.s.profiles[p.ID] = *p
	return nil
}

func (r profileRepo) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	p, err := r.GetByID(ctx, userID)
	if err != nil {
		return domain.RoleUser, nil
	}
	return p.Role, nil
}

var (
	_ repository.Store              = (*Store)(nil)
	_ repository.TemplateRepository = templateRepo{}
	_ repository.ClassRepository    = classRepo{}
	_ repository.BookingRepository  = bookingRepo{}
	_ repository.ProfileRepository  = profileRepo{}
)
