// Package cache holds rendered pages for a short time. Only the index page
// uses it, so freshly created posts show up once the entry expires or the
// cache is cleared.
package cache

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DariaKalinichenko/Yatube/internal/config"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// Page is a rendered response.
type Page struct {
	Status int               `json:"status"`
	Header map[string]string `json:"header"`
	Body   []byte            `json:"body"`
}

// Replay writes the stored status, headers and body to w.
func (p Page) Replay(w http.ResponseWriter) {
	for k, v := range p.Header {
		w.Header().Set(k, v)
	}
	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(p.Body)
}

// PageCache stores rendered pages by key.
type PageCache interface {
	// Get returns the page and true on a hit.
	Get(ctx context.Context, key string) (Page, bool, error)
	Set(ctx context.Context, key string, page Page) error
	Clear(ctx context.Context) error
	Close() error
}

// Key builds the cache key for a request URL as seen by viewer. Anonymous
// viewers share one entry per URL.
func Key(requestURI, viewer string) string {
	if viewer == "" {
		viewer = "-"
	}
	return "page:" + requestURI + "|" + viewer
}

// New picks a backend from configuration. A redis URL selects redis unless
// the backend is explicitly none, and a zero TTL disables caching.
func New(cfg config.CacheConfig, log *logger.Logger) (PageCache, error) {
	if log == nil {
		log = logger.NewDefault("cache")
	}
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.TTL <= 0 {
		backend = "none"
	}
	if backend == "memory" && cfg.RedisURL != "" {
		backend = "redis"
	}

	switch backend {
	case "none":
		log.Info("page cache disabled")
		return Noop{}, nil
	case "", "memory":
		log.WithField("ttl", cfg.TTL).Info("using in-memory page cache")
		return NewMemory(cfg.TTL), nil
	case "redis":
		c, err := NewRedis(cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		log.WithField("ttl", cfg.TTL).Info("using redis page cache")
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (Page, bool, error) { return Page{}, false, nil }
func (Noop) Set(context.Context, string, Page) error         { return nil }
func (Noop) Clear(context.Context) error                     { return nil }
func (Noop) Close() error                                    { return nil }

var _ PageCache = Noop{}

func cloneHeader(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func nowUTC() time.Time { return time.Now().UTC() }
