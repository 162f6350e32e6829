// internal/api/handler/actor.go
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"yieldledger/internal/domain"
	"yieldledger/internal/util"
)

// Request headers identifying the caller. An upstream gateway is expected to
// authenticate the session and set them.
const (
	HeaderActorID        = "X-Actor-ID"
	HeaderActorRole      = "X-Actor-Role"
	HeaderImpersonatorID = "X-Impersonator-ID"
)

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by ActorMiddleware.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// ActorMiddleware reads the actor headers and rejects requests without a
// valid user or admin actor. The system role is reserved for jobs.
func ActorMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	h := base{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := parseActor(r)
			if err != nil {
				h.respondWithJSON(w, http.StatusUnauthorized, util.ResultFromError(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func parseActor(r *http.Request) (domain.Actor, error) {
	id, err := strconv.ParseInt(r.Header.Get(HeaderActorID), 10, 64)
	if err != nil || id <= 0 {
		return domain.Actor{}, util.ErrForbidden
	}
	actor := domain.Actor{ID: id, Role: domain.ActorRole(r.Header.Get(HeaderActorRole))}
	switch actor.Role {
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return domain.Actor{}, util.ErrForbidden
	}
	if raw := r.Header.Get(HeaderImpersonatorID); raw != "" {
		impersonator, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || impersonator <= 0 || actor.Role != domain.RoleUser {
			return domain.Actor{}, util.ErrForbidden
		}
		actor.ImpersonatorID = &impersonator
	}
	return actor, nil
}

// RequireAdmin rejects non-admin actors.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	h := base{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok || actor.Role != domain.RoleAdmin {
				h.respondWithError(w, r, util.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authorizeUser returns the actor when it may act on userID's account.
func authorizeUser(r *http.Request, userID int64) (domain.Actor, error) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		return domain.Actor{}, util.ErrForbidden
	}
	if actor.Role == domain.RoleAdmin || actor.ID == userID {
		return actor, nil
	}
	return domain.Actor{}, util.ErrForbidden
}
