package auth

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/stashkeeper-backend/pkg/errors"
)

type contextKey string

const ctxUserID contextKey = "user_id"

// UserProvider resolves the owner on whose behalf a call runs.
type UserProvider interface {
	CurrentUser(ctx context.Context) (uuid.UUID, error)
}

// WithUserID injects the authenticated user into the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFromContext returns the authenticated user, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ContextUser reads the user placed in the context by the auth middleware.
type ContextUser struct{}

func (ContextUser) CurrentUser(ctx context.Context) (uuid.UUID, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no authenticated user")
	}
	return id, nil
}

// StaticUser always acts as the same owner. Used by the operator CLI and tests.
type StaticUser uuid.UUID

func (s StaticUser) CurrentUser(context.Context) (uuid.UUID, error) {
	id := uuid.UUID(s)
	if id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no user configured")
	}
	return id, nil
}
