package middleware

import (
	"context"
	"net/http"

	"expense_manager/internal/common"
	"expense_manager/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

// Gate resolves a bearer token into the current store-backed user.
type Gate interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type contextKey string

const userCtxKey contextKey = "authUser"

type Auth struct {
	gate Gate
}

func NewAuth(gate Gate) *Auth {
	return &Auth{gate: gate}
}

// Authenticator extracts the bearer token from the Authorization header and
// resolves it through the gate. The resolved user carries the role as stored
// right now, not as claimed at issuance time.
func (a *Auth) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := jwtauth.TokenFromHeader(r)
		if token == "" {
			common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		user, err := a.gate.Authenticate(r.Context(), token)
		if err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly rejects any caller whose current role is not admin.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok || user.Role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UsersOnly rejects admins. Admins do not own expense records; they inspect
// other users' data through the admin routes instead.
func UsersOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUserFromContext(r.Context())
		if !ok || user.Role != model.RoleUser {
			common.RespondWithError(w, http.StatusForbidden, "Admins cannot access their own expense data")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext returns the authenticated user set by Authenticator.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userCtxKey).(*model.User)
	return user, ok
}
