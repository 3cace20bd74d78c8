package httpapi

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the authenticated caller, resolved from a verified access
// token. It is trusted for the lifetime of one request; no storage lookup
// backs it.
type Identity struct {
	UserID string
	Email  string
}

// IdentityFromContext returns the identity placed by the authenticate
// middleware, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// authenticate resolves a bearer access token into an identity. A request
// without a bearer token proceeds anonymously; a request presenting one that
// fails verification is rejected outright.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.verifier.Verify(token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		identity := &Identity{UserID: claims.UserID(), Email: claims.Email}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser gates a handler on an authenticated identity.
func (s *HTTPServer) requireUser(next func(w http.ResponseWriter, r *http.Request, identity *Identity)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			s.writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next(w, r, identity)
	})
}
