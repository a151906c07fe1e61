package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// SessionCookie is the name of the login cookie.
const SessionCookie = "yatube_session"

// LoginURL is where anonymous users are sent by LoginRequired.
const LoginURL = "/auth/login/"

// SessionResolver turns a session token into its user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (user.User, error)
}

type userKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userKey{}).(user.User)
	return u, ok
}

// GetUserID returns the authenticated username or "".
func GetUserID(ctx context.Context) string {
	if u, ok := CurrentUser(ctx); ok {
		return u.Username
	}
	return ""
}

// AuthMiddleware resolves the session cookie. Requests without a valid
// session continue anonymously and a stale cookie is cleared.
type AuthMiddleware struct {
	sessions SessionResolver
	log      *logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(sessions SessionResolver, log *logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &AuthMiddleware{sessions: sessions, log: log}
}

// Handler returns the middleware handler
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			if errors.IsCode(err, errors.CodeInvalidToken) {
				m.log.LogSecurityEvent(r.Context(), "invalid_session", map[string]interface{}{
					"path":  r.URL.Path,
					"error": err.Error(),
				})
			} else {
				m.log.WithContext(r.Context()).WithError(err).Warn("resolve session")
			}
			ClearSessionCookie(w, false)
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithUser(r.Context(), u)
		ctx = logger.WithUserID(ctx, u.Username)
		setLoggedUser(r, u.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginRequired redirects anonymous users to the login page, remembering
// where they were going.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			http.Redirect(w, r, LoginURL+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie stores token in the login cookie until maxAge seconds.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the login cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	SetSessionCookie(w, "", -1, secure)
}
