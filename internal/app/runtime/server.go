package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DariaKalinichenko/Yatube/internal/app/system"
	"github.com/DariaKalinichenko/Yatube/internal/app/web"
	"github.com/DariaKalinichenko/Yatube/internal/config"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

const limiterIdle = 10 * time.Minute

var _ system.Service = (*httpService)(nil)

// httpService runs the web server and sweeps idle rate limiter entries.
type httpService struct {
	cfg  config.ServerConfig
	site *web.Server
	log  *logger.Logger

	mu     sync.Mutex
	server *http.Server
	addr   string
	sweep  *cron.Cron
	errCh  chan error
}

func newHTTPService(cfg config.ServerConfig, site *web.Server, log *logger.Logger) *httpService {
	return &httpService{cfg: cfg, site: site, log: log, errCh: make(chan error, 1)}
}

func (s *httpService) Name() string { return "http" }

func (s *httpService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr().String()
	s.server = &http.Server{
		Handler:      s.site,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.sweep = cron.New()
	limiter := s.site.RateLimiter()
	if _, err := s.sweep.AddFunc("@every 5m", func() {
		if n := limiter.Cleanup(limiterIdle); n > 0 {
			s.log.WithField("removed", n).Debug("swept idle rate limiters")
		}
	}); err != nil {
		ln.Close()
		return err
	}
	s.sweep.Start()

	server := s.server
	go func() {
		s.log.Infof("HTTP server listening on %s", s.addr)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
	}()
	return nil
}

func (s *httpService) Stop(ctx context.Context) error {
	s.mu.Lock()
	server, sweep := s.server, s.sweep
	s.server, s.sweep = nil, nil
	s.mu.Unlock()

	if sweep != nil {
		<-sweep.Stop().Done()
	}
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Addr is the bound listen address, useful when the port was 0.
func (s *httpService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Errors delivers a fatal serve error.
func (s *httpService) Errors() <-chan error {
	return s.errCh
}
