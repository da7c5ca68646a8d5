package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/auth"
	"github.com/pkordes/foodgram/backend/internal/domain"
)

// Authenticator resolves a bearer token to the user it was issued to.
// *service.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, auth.Claims, error)
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Claims auth.Claims
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p. Exported for handler tests.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticate reads the token from the Authorization header ("Token <t>" or
// "Bearer <t>") and stores the caller in the request context.
// Requests without the header pass through anonymously; a header with an
// invalid or revoked token is rejected with 401.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := parseAuthorization(header)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "malformed Authorization header")
				return
			}

			userID, claims, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			noteUser(r.Context(), userID)
			ctx := WithPrincipal(r.Context(), Principal{UserID: userID, Claims: claims})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401. Mount it after Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseAuthorization extracts the token of a "Token" or "Bearer" header.
func parseAuthorization(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// errorBody mirrors the API-wide error shape {"error":{"code","message"}}.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
