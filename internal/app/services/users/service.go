package users

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// Registration carries the fields of a new account.
type Registration struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Service registers and authenticates users.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
	cost  int
}

// Option customises the service.
type Option func(*Service)

// WithBcryptCost overrides the password hashing cost. Tests use
// bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	s := &Service{store: store, log: log, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, reg Registration) (user.User, error) {
	username := strings.TrimSpace(reg.Username)
	if username == "" {
		return user.User{}, svcerrors.Validation("username is required")
	}
	if reg.Password == "" {
		return user.User{}, svcerrors.Validation("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return user.User{}, svcerrors.Internal("hash password", err)
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Username:     username,
		Email:        strings.TrimSpace(reg.Email),
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		PasswordHash: string(hash),
		DateJoined:   time.Now().UTC(),
	})
	if errors.Is(err, storage.ErrConflict) {
		return user.User{}, svcerrors.Conflict("A user with that username already exists.", err)
	}
	if err != nil {
		return user.User{}, svcerrors.Internal("create user", err)
	}

	s.log.WithField("user_id", created.ID).WithField("username", created.Username).Info("user registered")
	return created, nil
}

// Authenticate checks the password. Unknown users and wrong passwords give
// the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	invalid := svcerrors.Unauthorized("Please enter a correct username and password.")

	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, invalid
	}
	if err != nil {
		return user.User{}, svcerrors.Internal("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("username", u.Username).Warn("password mismatch")
		return user.User{}, invalid
	}
	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, svcerrors.NotFound("user", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return user.User{}, svcerrors.Internal("load user", err)
	}
	return u, nil
}

// GetByUsername returns a user by exact username.
func (s *Service) GetByUsername(ctx context.Context, username string) (user.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, svcerrors.NotFound("user", username)
	}
	if err != nil {
		return user.User{}, svcerrors.Internal("load user", err)
	}
	return u, nil
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}
