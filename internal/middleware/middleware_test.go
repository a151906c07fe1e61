package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

type stubResolver map[string]user.User

func (s stubResolver) Resolve(_ context.Context, token string) (user.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return user.User{}, errors.InvalidToken(nil)
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(u.Username))
}

func TestAuthMiddleware(t *testing.T) {
	auth := NewAuthMiddleware(stubResolver{"good": {ID: 1, Username: "leo"}}, logger.NewDiscard())
	h := auth.Handler(http.HandlerFunc(whoAmI))

	tests := []struct {
		name        string
		cookie      string
		want        string
		clearCookie bool
	}{
		{"no cookie", "", "anonymous", false},
		{"valid session", "good", "leo", false},
		{"stale session", "bad", "anonymous", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Body.String())
			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == SessionCookie && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.clearCookie, cleared)
		})
	}
}

func TestLoginRequired(t *testing.T) {
	h := LoginRequired(http.HandlerFunc(whoAmI))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/new/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fnew%2F", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/new/", nil)
	req = req.WithContext(WithUser(req.Context(), user.User{ID: 1, Username: "leo"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leo", rec.Body.String())
}

func TestRateLimiterOnlyThrottlesWrites(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.NewDiscard())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/new/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodPost, "/new/", nil)
	other.RemoteAddr = "10.0.0.9:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewDiscard())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("a")
	now = now.Add(time.Hour)
	rl.getLimiter("b")

	assert.Equal(t, 1, rl.Cleanup(30*time.Minute))
	assert.Len(t, rl.limiters, 1)
}

func TestLoggingMiddlewareTraceID(t *testing.T) {
	h := LoggingMiddleware(logger.NewDiscard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(logger.GetTraceID(r.Context())))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "trace-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(TraceHeader))
	assert.Equal(t, "trace-123", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(TraceHeader))
	assert.Equal(t, rec.Header().Get(TraceHeader), rec.Body.String())
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware())
	r.HandleFunc("/{username}/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leo/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.NewDiscard(), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("custom 500"))
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "custom 500", rec.Body.String())
}
