package handlers

import (
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
)

// TokenVerifier checks an access token and returns the authenticated user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// requireAuth rejects requests without a valid bearer token and stores the
// actor id on the context for the wrapped handler.
func requireAuth(verifier TokenVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := bearerToken(r)
		if token == "" {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		actorID, err := verifier.Verify(token)
		if err != nil {
			logging.FromContext(ctx).Warn("rejected access token", "error", err)
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}

		next(w, r.WithContext(auth.WithActorID(ctx, actorID)))
	}
}

// optionalAuth resolves the actor when a valid token is present but lets
// anonymous requests through. A present-but-invalid token is still rejected
// so clients learn their session has expired.
func optionalAuth(verifier TokenVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := bearerToken(r)
		if token == "" {
			next(w, r)
			return
		}

		actorID, err := verifier.Verify(token)
		if err != nil {
			logging.FromContext(ctx).Warn("rejected access token", "error", err)
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}

		next(w, r.WithContext(auth.WithActorID(ctx, actorID)))
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
