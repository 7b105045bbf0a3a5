package auth

import (
	"context"

	"github.com/Domenick1991/classbooking/internal/domain"
)

// RoleLookup resolves a user's current role from durable storage.
type RoleLookup interface {
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}

// RequireStaff fails with domain.ErrPermissionDenied unless userID currently
// holds a privileged role. It runs outside any booking transaction.
func RequireStaff(ctx context.Context, roles RoleLookup, userID string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	role, err := roles.GetRole(ctx, userID)
	if err != nil {
		return domain.Internal(err)
	}
	if !role.Privileged() {
		return domain.ErrPermissionDenied
	}
	return nil
}
