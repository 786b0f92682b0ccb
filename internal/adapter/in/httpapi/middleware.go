package httpapi

import (
	"context"
	"net/http"
	"strings"

	"microblog/internal/model"
	"microblog/pkg/logger"
)

//go:generate mockgen -source=middleware.go -destination=./token_verifier_mock.go -package=httpapi microblog/internal/adapter/in/httpapi TokenVerifier
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (model.Identity, error)
}

type contextKey string

const identityKey contextKey = "caller_identity"

// Authenticator decodes an optional bearer token into a caller identity.
// A nil verifier runs the surface anonymous-only: any supplied token is
// rejected because nothing can verify it.
type Authenticator struct {
	verifier TokenVerifier
}

func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// WithIdentity attaches the verified caller identity to the request context.
// Requests with no Authorization header proceed anonymously; a token that is
// present but fails verification is rejected immediately with 401.
func (a *Authenticator) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Unauthorized",
				"invalid Authorization header format, expected: Bearer <token>")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		if a.verifier == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "no identity provider configured")
			return
		}

		id, err := a.verifier.Verify(r.Context(), token)
		if err != nil {
			logger.FromContext(r.Context()).Warn("token verification failed",
				"path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects requests that carry no verified identity. Must run
// after WithIdentity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerEmail(r) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerEmail returns the verified caller email, or "" for anonymous callers.
func CallerEmail(r *http.Request) string {
	id, ok := r.Context().Value(identityKey).(model.Identity)
	if !ok {
		return ""
	}
	return id.Email
}
