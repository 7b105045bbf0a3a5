package auth

import (
	"context"

	"github.com/Domenick1991/classbooking/internal/domain"
)

type callerKey struct{}

func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

func CallerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey{}).(string)
	return id, ok && id != ""
}

// RequireCaller returns domain.ErrUnauthenticated when ctx carries no identity.
func RequireCaller(ctx context.Context) (string, error) {
	id, ok := CallerFrom(ctx)
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}
