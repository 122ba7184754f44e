package httpx

import (
	"context"
	"errors"
	"net/http"
)

// IdentityResolver binds a request to its authenticated user id.
// Credential verification and token issuance live upstream; this is
// the seam where a real verifier plugs in.
type IdentityResolver interface {
	Resolve(r *http.Request) (userID string, err error)
}

// HeaderIdentity trusts the identity header stamped by the gateway
// that terminated authentication. Requests reaching this service
// without it are rejected, never given a placeholder identity.
type HeaderIdentity struct {
	Header string // defaults to X-User-Id
}

func (h HeaderIdentity) Resolve(r *http.Request) (string, error) {
	header := h.Header
	if header == "" {
		header = "X-User-Id"
	}
	v := r.Header.Get(header)
	if v == "" {
		return "", errors.New("missing identity")
	}
	return v, nil
}

type ctxKey int

const userIDKey ctxKey = iota

// RequireUser resolves the caller's identity and stores it in the
// request context, or answers 401.
func RequireUser(res IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := res.Resolve(r)
			if err != nil {
				writeErrorBody(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
		})
	}
}

// UserID returns the authenticated user id stored by RequireUser.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}
