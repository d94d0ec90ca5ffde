package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"

	"ae-portal/internal/models"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// SessionName is the cookie session shared with the authentication system
const SessionName = "session"

// UserLoader resolves the user stored in the session
type UserLoader interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// AuthMiddleware provides authentication functionality
type AuthMiddleware struct {
	users UserLoader
	store sessions.Store
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(users UserLoader, store sessions.Store) *AuthMiddleware {
	return &AuthMiddleware{
		users: users,
		store: store,
	}
}

// LoadUser middleware loads the current user from session and adds to context
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, SessionName)
		if err != nil {
			// Continue without user if session is invalid
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := SessionInt(session, "user_id")
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, models.ErrUserNotFound) {
				slog.ErrorContext(r.Context(), "failed to load session user", "user_id", userID, "error", err)
			}
			// Stale session, drop the user reference
			delete(session.Values, "user_id")
			session.Save(r, w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth middleware ensures user is authenticated
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return RequireAuth(next)
}

// SessionInt reads an integer session value. Depending on the codec the value
// may come back as an int, a float64 or a string.
func SessionInt(session *sessions.Session, key string) (int, bool) {
	var id int
	switch v := session.Values[key].(type) {
	case int:
		id = v
	case int64:
		id = int(v)
	case float64:
		id = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		id = parsed
	default:
		return 0, false
	}
	return id, id != 0
}

// GetUserFromContext retrieves the user from request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetUserContext sets the user in the context (for testing)
func SetUserContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// RequireAuth rejects requests without a user in context
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			WriteJSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
