// Package auth authorizes API requests that carry a signed session cookie.
//
// Sessions are minted by operators (lighthousectl session issue) or by the
// identity provider in front of the service; this package only reads them.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	userIDKey = "user_id"
	issuedKey = "issued_at"
)

// SessionUser is the authenticated caller injected into r.Context().
type SessionUser struct {
	ID      string
	Name    string
	Email   string
	Role    string
	CoachID string // set for PIRs
}

// UserFetcher loads fresh user data for a session's user ID. It returns nil
// when the user does not exist or is disabled.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager wraps the cookie store and the middleware built on it.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// secure=true marks cookies Secure; use false for local development over
// plain http. Cookies are always SameSite=Lax so cross-site POSTs arrive
// without a session.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "lighthouse-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher makes LoadSessionUser reload the user on every request so
// role changes and disabled accounts take effect immediately.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// Name returns the session cookie name.
func (sm *SessionManager) Name() string {
	return sm.name
}

// IssueCookie encodes a session for userID the same way the cookie store
// would, so the value can be handed to a client outside a request cycle.
func (sm *SessionManager) IssueCookie(userID string, now time.Time) (*http.Cookie, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	values := map[interface{}]interface{}{
		userIDKey: userID,
		issuedKey: now.Unix(),
	}
	encoded, err := securecookie.EncodeMulti(sm.name, values, sm.store.Codecs...)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return sessions.NewCookie(sm.name, encoded, sm.store.Options), nil
}

// LoadSessionUser injects the session's user into the request context.
// Requests without a valid session continue anonymously.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		userID, _ := sess.Values[userIDKey].(string)
		if userID == "" || sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}
		u := sm.fetcher.FetchUser(r.Context(), userID)
		if u == nil {
			sm.log.Debug("session user not found or disabled", zap.String("user_id", userID))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn responds 401 unless a user is in context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole responds 401 without a user and 403 when the user's role is
// not in allowed. Role comparison is case-insensitive.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user in context and whether one was found.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into r's context. Handler tests use it to skip the
// cookie round trip.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
