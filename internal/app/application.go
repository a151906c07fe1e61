package app

import (
	"context"
	"fmt"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/app/cache"
	"github.com/DariaKalinichenko/Yatube/internal/app/media"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/comments"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/follows"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/groups"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/posts"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/sessions"
	"github.com/DariaKalinichenko/Yatube/internal/app/services/users"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage/memory"
	"github.com/DariaKalinichenko/Yatube/internal/app/system"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users    storage.UserStore
	Groups   storage.GroupStore
	Posts    storage.PostStore
	Comments storage.CommentStore
	Follows  storage.FollowStore
	Sessions storage.SessionStore
}

// Options carries the non-storage settings of the application.
type Options struct {
	SecretKey     []byte
	SessionTTL    time.Duration
	PurgeSchedule string
	MediaRoot     string
	// Cache defaults to no caching.
	Cache cache.PageCache
	// BcryptCost overrides the password hashing cost when non-zero.
	BcryptCost int
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users    *users.Service
	Groups   *groups.Service
	Posts    *posts.Service
	Comments *comments.Service
	Follows  *follows.Service
	Sessions *sessions.Service
	Media    *media.Storage
	Cache    cache.PageCache
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Groups == nil {
		stores.Groups = mem
	}
	if stores.Posts == nil {
		stores.Posts = mem
	}
	if stores.Comments == nil {
		stores.Comments = mem
	}
	if stores.Follows == nil {
		stores.Follows = mem
	}
	if stores.Sessions == nil {
		stores.Sessions = mem
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 14 * 24 * time.Hour
	}
	if opts.MediaRoot == "" {
		opts.MediaRoot = "media"
	}

	var userOpts []users.Option
	if opts.BcryptCost > 0 {
		userOpts = append(userOpts, users.WithBcryptCost(opts.BcryptCost))
	}

	mediaStore := media.New(opts.MediaRoot, log.Named("media"))
	userService := users.New(stores.Users, log.Named("users"), userOpts...)
	groupService := groups.New(stores.Groups, log.Named("groups"))
	postService := posts.New(stores.Posts, stores.Users, stores.Groups, stores.Follows, log.Named("posts"), posts.WithImageStore(mediaStore))
	commentService := comments.New(stores.Comments, stores.Posts, log.Named("comments"))
	followService := follows.New(stores.Follows, log.Named("follows"))
	sessionService, err := sessions.New(stores.Sessions, stores.Users, opts.SecretKey, opts.SessionTTL, log.Named("sessions"))
	if err != nil {
		return nil, fmt.Errorf("configure sessions: %w", err)
	}

	manager := system.NewManager()
	if err := manager.Register(sessions.NewPurger(sessionService, opts.PurgeSchedule, log.Named("session-purger"))); err != nil {
		return nil, fmt.Errorf("register session purger: %w", err)
	}

	return &Application{
		manager:  manager,
		log:      log,
		Users:    userService,
		Groups:   groupService,
		Posts:    postService,
		Comments: commentService,
		Follows:  followService,
		Sessions: sessionService,
		Media:    mediaStore,
		Cache:    opts.Cache,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services and releases the page cache.
func (a *Application) Stop(ctx context.Context) error {
	err := a.manager.Stop(ctx)
	if cerr := a.Cache.Close(); cerr != nil {
		a.log.WithError(cerr).Warn("close page cache")
	}
	return err
}
