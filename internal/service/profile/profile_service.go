package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/repository"
)

type ProfileUseCase interface {
	Get(ctx context.Context, callerID string) (*domain.Profile, error)
	Save(ctx context.Context, callerID string, input ProfileInput) (*domain.Profile, error)
}

type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProfileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, callerID string) (*domain.Profile, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.profiles.GetByID(ctx, callerID)
}

// Save creates or updates the caller's own profile. New profiles are plain
// members and an existing role is never changed here.
func (s *ProfileService) Save(ctx context.Context, callerID string, input ProfileInput) (*domain.Profile, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	p := &domain.Profile{ID: callerID, Role: domain.RoleUser}
	existing, err := s.profiles.GetByID(ctx, callerID)
	switch {
	case err == nil:
		p = existing
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, domain.AsError(err)
	}

	p.Name = strings.TrimSpace(input.Name)
	p.Email = strings.TrimSpace(input.Email)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, domain.AsError(err)
	}
	return p, nil
}

var _ ProfileUseCase = (*ProfileService)(nil)
