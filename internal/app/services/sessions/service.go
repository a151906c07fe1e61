// Package sessions issues and resolves login sessions. A session is an HS256
// JWT held in a cookie plus a server-side record keyed by the token hash, so
// logging out revokes the token before it expires.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/session"
	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

const issuer = "yatube"

// Claims are the JWT claims of a session token. The registered ID claim
// carries the session ID and Subject the user ID.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service manages session tokens.
type Service struct {
	store  storage.SessionStore
	users  storage.UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *logger.Logger
}

// Option customises the service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a session service signing with secret.
func New(store storage.SessionStore, users storage.UserStore, secret []byte, ttl time.Duration, log *logger.Logger, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if log == nil {
		log = logger.NewDefault("sessions")
	}
	s := &Service{
		store:  store,
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL is the lifetime of issued sessions.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue creates a session for u and returns the signed token.
func (s *Service) Issue(ctx context.Context, u user.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	id := uuid.NewString()

	claims := Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, svcerrors.Internal("sign session token", err)
	}

	if _, err := s.store.CreateSession(ctx, session.Session{
		ID:         id,
		UserID:     u.ID,
		TokenHash:  hashToken(token),
		CreatedAt:  now,
		ExpiresAt:  expires,
		LastSeenAt: now,
	}); err != nil {
		return "", time.Time{}, svcerrors.Internal("store session", err)
	}

	s.log.WithField("user", u.Username).WithField("session_id", id).Info("session issued")
	return token, expires, nil
}

// Resolve validates token and returns its user. Revoked, expired and
// tampered tokens are rejected with an invalid token error.
func (s *Service) Resolve(ctx context.Context, token string) (user.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return user.User{}, err
	}

	sess, err := s.store.GetSessionByTokenHash(ctx, hashToken(token))
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, svcerrors.InvalidToken(errors.New("session revoked"))
	}
	if err != nil {
		return user.User{}, svcerrors.Internal("load session", err)
	}
	now := s.now()
	if sess.Expired(now) || sess.ID != claims.ID {
		return user.User{}, svcerrors.InvalidToken(errors.New("session expired"))
	}

	u, err := s.users.GetUser(ctx, sess.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, svcerrors.InvalidToken(errors.New("session user deleted"))
	}
	if err != nil {
		return user.User{}, svcerrors.Internal("load session user", err)
	}

	if err := s.store.TouchSession(ctx, sess.ID, now); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.WithError(err).Warn("touch session")
	}
	return u, nil
}

// Revoke deletes the session behind token. Unknown tokens are ignored.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sess, err := s.store.GetSessionByTokenHash(ctx, hashToken(token))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return svcerrors.Internal("load session", err)
	}
	if err := s.store.DeleteSession(ctx, sess.ID); err != nil {
		return svcerrors.Internal("delete session", err)
	}
	s.log.WithField("session_id", sess.ID).Info("session revoked")
	return nil
}

// PurgeExpired removes sessions whose expiry has passed.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, svcerrors.Internal("purge sessions", err)
	}
	return n, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, svcerrors.InvalidToken(err)
	}
	if !parsed.Valid {
		return nil, svcerrors.InvalidToken(nil)
	}
	return claims, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
