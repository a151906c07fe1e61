package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/DariaKalinichenko/Yatube/internal/app/metrics"
	"github.com/DariaKalinichenko/Yatube/internal/app/system"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

var _ system.Service = (*Purger)(nil)

// Purger deletes expired sessions on a cron schedule.
type Purger struct {
	service  *Service
	schedule string
	log      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

// NewPurger creates a lifecycle-managed purger. schedule accepts the
// standard five-field cron syntax and descriptors such as "@every 10m".
func NewPurger(service *Service, schedule string, log *logger.Logger) *Purger {
	if log == nil {
		log = logger.NewDefault("session-purger")
	}
	if schedule == "" {
		schedule = "@every 10m"
	}
	return &Purger{service: service, schedule: schedule, log: log}
}

func (p *Purger) Name() string { return "session-purger" }

func (p *Purger) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := cron.New()
	if _, err := c.AddFunc(p.schedule, func() { p.Run(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("parse purge schedule %q: %w", p.schedule, err)
	}
	c.Start()

	p.cron = c
	p.cancel = cancel
	p.running = true
	p.log.WithField("schedule", p.schedule).Info("session purger started")
	return nil
}

func (p *Purger) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	c, cancel := p.cron, p.cancel
	p.running = false
	p.mu.Unlock()

	cancel()
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	p.log.Info("session purger stopped")
	return nil
}

// Run performs one purge pass.
func (p *Purger) Run(ctx context.Context) {
	n, err := p.service.PurgeExpired(ctx)
	if err != nil {
		p.log.WithError(err).Warn("purge expired sessions")
		return
	}
	metrics.RecordSessionsPurged(n)
	if n > 0 {
		p.log.WithField("removed", n).Info("expired sessions purged")
	}
}
