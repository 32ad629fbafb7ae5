package auth

import (
	"context"
	"fmt"
	"reflect"

	"github.com/andrescamacho/solarion-go/internal/application/mediator"
	"github.com/andrescamacho/solarion-go/internal/domain/game"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

type authContextKey int

const (
	userKey authContextKey = iota + 1000 // Offset from logger keys
)

// WithUser injects the authenticated user into the context
func WithUser(ctx context.Context, user *game.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from context
func UserFromContext(ctx context.Context) (*game.User, error) {
	user, ok := ctx.Value(userKey).(*game.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// UserMiddleware resolves the PlayerID field of a request into a user and
// injects it into the context. Requests without a PlayerID pass through.
func UserMiddleware(users func() game.UserRepository) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		playerID := extractPlayerID(request)
		if playerID.IsZero() {
			return next(ctx, request)
		}

		user, err := users().FindByID(ctx, playerID.Value())
		if err != nil {
			return nil, fmt.Errorf("failed to find player %s: %w", playerID.String(), err)
		}

		return next(WithUser(ctx, user), request)
	}
}

// extractPlayerID uses reflection to read a shared.PlayerID field named PlayerID
func extractPlayerID(request mediator.Request) shared.PlayerID {
	v := reflect.ValueOf(request)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return shared.PlayerID{}
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return shared.PlayerID{}
	}

	field := v.FieldByName("PlayerID")
	if !field.IsValid() {
		return shared.PlayerID{}
	}
	if id, ok := field.Interface().(shared.PlayerID); ok {
		return id
	}
	return shared.PlayerID{}
}

// ResolveUser returns the user injected by UserMiddleware, loading it by
// playerID when the request did not pass through the middleware
func ResolveUser(ctx context.Context, users game.UserRepository, playerID shared.PlayerID) (*game.User, error) {
	if user, err := UserFromContext(ctx); err == nil {
		if playerID.IsZero() || user.ID == playerID.Value() {
			return user, nil
		}
	}
	if playerID.IsZero() {
		return nil, shared.NewValidationError("player_id", "is required")
	}
	user, err := users.FindByID(ctx, playerID.Value())
	if err != nil {
		return nil, fmt.Errorf("failed to find player %s: %w", playerID.String(), err)
	}
	return user, nil
}
