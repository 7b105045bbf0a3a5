package schedule

import (
	"context"
	"time"

	"github.com/Domenick1991/classbooking/internal/auth"
	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/repository"
	"github.com/google/uuid"
)

type TemplateUseCase interface {
	List(ctx context.Context, callerID string) ([]domain.ClassTemplate, error)
	Create(ctx context.Context, callerID string, input TemplateInput) (*domain.ClassTemplate, error)
	Update(ctx context.Context, callerID, id string, input TemplateInput) (*domain.ClassTemplate, error)
	SetActive(ctx context.Context, callerID, id string, active bool) (*domain.ClassTemplate, error)
	Delete(ctx context.Context, callerID, id string) error
}

type TemplateInput struct {
	Title           string `json:"title"`
	DayOfWeek       int    `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Timezone        string `json:"timezone"`
	CoachID         string `json:"coach_id"`
	CoachName       string `json:"coach_name"`
	Capacity        int    `json:"capacity"`
	Location        string `json:"location"`
	IsActive        *bool  `json:"is_active"`
}

type TemplateService struct {
	templates repository.TemplateRepository
	roles     auth.RoleLookup
	now       func() time.Time
}

func NewTemplateService(templates repository.TemplateRepository, roles auth.RoleLookup) *TemplateService {
	return &TemplateService{templates: templates, roles: roles, now: time.Now}
}

func (s *TemplateService) List(ctx context.Context, callerID string) ([]domain.ClassTemplate, error) {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return nil, err
	}
	return s.templates.List(ctx)
}

func (s *TemplateService) Create(ctx context.Context, callerID string, input TemplateInput) (*domain.ClassTemplate, error) {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return nil, err
	}

	now := s.now()
	t := &domain.ClassTemplate{
		ID:        uuid.NewString(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.apply(t)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Update(ctx context.Context, callerID, id string, input TemplateInput) (*domain.ClassTemplate, error) {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return nil, err
	}

	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(t)
	t.UpdatedAt = s.now()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetActive toggles generation for a template. Already generated instances
// are left as they are.
func (s *TemplateService) SetActive(ctx context.Context, callerID, id string, active bool) (*domain.ClassTemplate, error) {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return nil, err
	}
	return s.templates.SetActive(ctx, id, active)
}

func (s *TemplateService) Delete(ctx context.Context, callerID, id string) error {
	if err := auth.RequireStaff(ctx, s.roles, callerID); err != nil {
		return err
	}
	return s.templates.Delete(ctx, id)
}

func (in TemplateInput) apply(t *domain.ClassTemplate) {
	t.Title = in.Title
	t.DayOfWeek = in.DayOfWeek
	t.StartTime = in.StartTime
	t.DurationMinutes = in.DurationMinutes
	t.Timezone = in.Timezone
	t.CoachID = in.CoachID
	t.CoachName = in.CoachName
	t.Capacity = in.Capacity
	t.Location = in.Location
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
}

var _ TemplateUseCase = (*TemplateService)(nil)
