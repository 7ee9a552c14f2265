package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	"github.com/foodgramapp/foodgram-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	actorKey     ctxKey = "actor"
	sessionIDKey ctxKey = "session_id"
)

// withActor stores the request's actor and session in context.
func withActor(ctx context.Context, actor domain.Actor, sessionID string) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// ActorFrom returns the actor attached by authMiddleware. Requests without a
// valid token act anonymously.
func ActorFrom(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(actorKey).(domain.Actor); ok {
		return actor
	}
	return domain.Anonymous()
}

// sessionIDFrom returns the session behind the request's token, or "".
func sessionIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// authMiddleware resolves the Bearer token into an actor for the request.
// A missing or invalid token continues anonymously; services reject
// anonymous actors where authentication is required.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || auth == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, claims, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := withActor(r.Context(), domain.ActorFor(user), claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
