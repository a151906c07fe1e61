// Package web serves the server-rendered Yatube pages.
package web

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/DariaKalinichenko/Yatube/internal/app"
	"github.com/DariaKalinichenko/Yatube/internal/app/httpapi"
	"github.com/DariaKalinichenko/Yatube/internal/app/metrics"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/internal/middleware"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// Options tunes the web layer.
type Options struct {
	MaxUploadBytes int64
	SecureCookies  bool
	RateLimitRPS   int
	RateLimitBurst int
}

// Server owns the router and the parsed templates.
type Server struct {
	app     *app.Application
	opts    Options
	log     *logger.Logger
	pages   map[string]*template.Template
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New parses the templates and builds the routing table.
func New(application *app.Application, opts Options, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewDefault("web")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 5
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}

	pages, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:     application,
		opts:    opts,
		log:     log,
		pages:   pages,
		limiter: middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, log.Named("ratelimit")),
	}
	s.handler = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RateLimiter exposes the limiter so idle entries can be swept.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.limiter
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
	r.Use(middleware.MetricsMiddleware(), s.limiter.Handler)

	get := []string{http.MethodGet, http.MethodHead}
	form := []string{http.MethodGet, http.MethodHead, http.MethodPost}
	login := func(h http.HandlerFunc) http.Handler { return middleware.LoginRequired(h) }

	r.HandleFunc("/healthz", s.health).Methods(get...)
	r.Handle("/metrics", metrics.Handler()).Methods(get...)
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", s.mediaHandler())).Methods(get...)
	httpapi.Register(r.PathPrefix(httpapi.Prefix).Subrouter(), s.app)

	r.HandleFunc("/auth/signup/", s.signup).Methods(form...)
	r.HandleFunc("/auth/login/", s.login).Methods(form...)
	r.HandleFunc("/auth/logout/", s.logout).Methods(form...)

	r.HandleFunc("/", s.index).Methods(get...)
	r.HandleFunc("/group/{slug}/", s.groupPosts).Methods(get...)
	r.Handle("/new/", login(s.newPost)).Methods(form...)
	r.Handle("/follow/", login(s.followIndex)).Methods(get...)

	const user = "/{username:[\\w.@+-]+}"
	const post = user + "/{post_id:[0-9]+}"
	r.HandleFunc(user+"/", s.profile).Methods(get...)
	r.Handle(user+"/follow/", login(s.profileFollow)).Methods(form...)
	r.Handle(user+"/unfollow/", login(s.profileUnfollow)).Methods(form...)
	r.HandleFunc(post+"/", s.postView).Methods(form...)
	r.Handle(post+"/edit/", login(s.postEdit)).Methods(form...)
	r.Handle(post+"/comment/", login(s.addComment)).Methods(form...)

	var h http.Handler = r
	h = middleware.NewAuthMiddleware(s.app.Sessions, s.log.Named("auth")).Handler(h)
	h = middleware.Recovery(s.log, s.serverError)(h)
	h = middleware.LoggingMiddleware(s.log)(h)
	return h
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) mediaHandler() http.Handler {
	files := s.app.Media.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			s.notFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// fail maps a service error onto the matching error page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if svcerrors.IsCode(err, svcerrors.CodeNotFound) {
		s.notFound(w, r)
		return
	}
	s.log.WithContext(r.Context()).WithError(err).Error("request failed")
	s.serverError(w, r)
}
