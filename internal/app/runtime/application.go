package runtime

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	app "github.com/DariaKalinichenko/Yatube/internal/app"
	"github.com/DariaKalinichenko/Yatube/internal/app/cache"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage/postgres"
	"github.com/DariaKalinichenko/Yatube/internal/app/web"
	"github.com/DariaKalinichenko/Yatube/internal/config"
	"github.com/DariaKalinichenko/Yatube/internal/platform/migrations"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

const minSecretKeyLen = 16

// Application wires configuration, storage and the web layer together and
// manages the process lifecycle.
type Application struct {
	cfg  *config.Config
	log  *logger.Logger
	app  *app.Application
	http *httpService
	db   *sql.DB
}

// NewApplication builds the application described by cfg.
func NewApplication(cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.New(logger.LoggingConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
	}

	secret, err := secretKey(cfg.Auth.SecretKey, log)
	if err != nil {
		return nil, err
	}

	stores, db, err := buildStores(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	pages, err := cache.New(cfg.Cache, log.Named("cache"))
	if err != nil {
		closeDB(db, log)
		return nil, fmt.Errorf("configure cache: %w", err)
	}

	application, err := app.New(stores, app.Options{
		SecretKey:     secret,
		SessionTTL:    cfg.Auth.SessionTTL,
		PurgeSchedule: cfg.Auth.PurgeSchedule,
		MediaRoot:     cfg.Media.Root,
		Cache:         pages,
	}, log)
	if err != nil {
		_ = pages.Close()
		closeDB(db, log)
		return nil, err
	}

	site, err := web.New(application, web.Options{
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		SecureCookies:  cfg.Auth.SecureCookies,
		RateLimitRPS:   cfg.Limits.RequestsPerSecond,
		RateLimitBurst: cfg.Limits.Burst,
	}, log.Named("web"))
	if err != nil {
		_ = pages.Close()
		closeDB(db, log)
		return nil, fmt.Errorf("configure web: %w", err)
	}

	httpSvc := newHTTPService(cfg.Server, site, log.Named("http"))
	if err := application.Attach(httpSvc); err != nil {
		_ = pages.Close()
		closeDB(db, log)
		return nil, err
	}

	return &Application{
		cfg:  cfg,
		log:  log,
		app:  application,
		http: httpSvc,
		db:   db,
	}, nil
}

// Run starts every service and blocks until ctx is cancelled or the HTTP
// server fails. Services are stopped before Run returns.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		closeDB(a.db, a.log)
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-a.http.Errors():
	}

	if err := a.Shutdown(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops every service and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := a.app.Stop(shutdownCtx)
	closeDB(a.db, a.log)
	return err
}

// App exposes the assembled domain services.
func (a *Application) App() *app.Application {
	return a.app
}

func buildStores(cfg *config.Config, log *logger.Logger) (app.Stores, *sql.DB, error) {
	if !cfg.UsesPostgres() {
		log.Warn("DATABASE_URL not set, using the in-memory store")
		return app.Stores{}, nil, nil
	}

	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		return app.Stores{}, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			closeDB(db, log)
			return app.Stores{}, nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	store := postgres.New(db)
	return app.Stores{
		Users:    store,
		Groups:   store,
		Posts:    store,
		Comments: store,
		Follows:  store,
		Sessions: store,
	}, db, nil
}

// OpenDatabase connects to PostgreSQL and verifies the connection.
func OpenDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func closeDB(db *sql.DB, log *logger.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Warn("error closing database connection")
	}
}

// secretKey parses SECRET_KEY or, when it is empty, generates a throwaway
// key. Sessions signed with a generated key do not survive a restart.
func secretKey(raw string, log *logger.Logger) ([]byte, error) {
	if raw == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		log.Warn("SECRET_KEY not set, generated a random key; sessions will not survive a restart")
		return key, nil
	}
	key, err := parseSecretKey(raw)
	if err != nil {
		return nil, fmt.Errorf("SECRET_KEY invalid: %w", err)
	}
	return key, nil
}

func parseSecretKey(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("missing secret key")
	}

	// hex
	if decoded, err := hex.DecodeString(value); err == nil && len(decoded) >= minSecretKeyLen {
		return decoded, nil
	}

	// base64
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil && len(decoded) >= minSecretKeyLen {
		return decoded, nil
	}

	// raw bytes
	if len(value) >= minSecretKeyLen {
		return []byte(value), nil
	}

	return nil, fmt.Errorf("must be at least %d bytes, raw or hex/base64 encoded", minSecretKeyLen)
}
