package middleware

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const basketIDKey = "basket_id"

// SessionMiddleware provides access to the basket reference kept in the
// user's cookie session
type SessionMiddleware struct {
	store sessions.Store
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(store sessions.Store) *SessionMiddleware {
	return &SessionMiddleware{
		store: store,
	}
}

// BasketID returns the basket id recorded in the session, or nil
func (m *SessionMiddleware) BasketID(r *http.Request) *int {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil
	}
	id, ok := SessionInt(session, basketIDKey)
	if !ok {
		return nil
	}
	return &id
}

// SetBasketID records the basket id in the session
func (m *SessionMiddleware) SetBasketID(w http.ResponseWriter, r *http.Request, id int) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	session.Values[basketIDKey] = id
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearBasketID drops the basket reference from the session
func (m *SessionMiddleware) ClearBasketID(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if _, ok := session.Values[basketIDKey]; !ok {
		return nil
	}
	delete(session.Values, basketIDKey)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SecureHeaders adds security headers to responses
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Only set HSTS for HTTPS
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
