package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/rawi-social/content-engine/internal/domain"
	"github.com/rawi-social/content-engine/internal/logger"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultBatchSize    = 50
)

// BacklogSource fetches posts awaiting analysis.
type BacklogSource interface {
	FetchUnanalyzed(ctx context.Context, limit int) ([]domain.Content, error)
}

// PollerConfig holds poller tuning.
type PollerConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// DatabaseRPS caps how often the poller queries the backlog. Zero
	// disables the limiter.
	DatabaseRPS int
}

// Poller periodically fetches unanalyzed posts and runs them through the
// batch processor.
type Poller struct {
	source    BacklogSource
	processor *BatchProcessor
	logger    logger.Logger

	batchSize    int
	pollInterval time.Duration
	limiter      *rate.Limiter

	running  bool
	stopChan chan struct{}
}

// NewPoller creates a poller over the given backlog source.
func NewPoller(source BacklogSource, processor *BatchProcessor, log logger.Logger, cfg PollerConfig) *Poller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	var limiter *rate.Limiter
	if cfg.DatabaseRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.DatabaseRPS), cfg.DatabaseRPS)
	}

	return &Poller{
		source:       source,
		processor:    processor,
		logger:       log,
		batchSize:    cfg.BatchSize,
		pollInterval: cfg.PollInterval,
		limiter:      limiter,
		stopChan:     make(chan struct{}),
	}
}

// Start launches the polling loop. It returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	if p.running {
		return errors.New("poller already running")
	}
	p.running = true

	p.logger.Info("poller starting",
		logger.Int("batch_size", p.batchSize),
		logger.Duration("poll_interval", p.pollInterval),
	)
	go p.run(ctx)
	return nil
}

// Stop halts the polling loop.
func (p *Poller) Stop() {
	if !p.running {
		return
	}
	p.logger.Info("poller stopping")
	close(p.stopChan)
	p.running = false
}

// IsRunning reports whether the loop is active.
func (p *Poller) IsRunning() bool {
	return p.running
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Drain once at startup so a restart does not wait a full interval.
	if err := p.drain(ctx); err != nil {
		p.logger.Error("initial backlog drain failed", logger.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped", logger.Error(ctx.Err()))
			return
		case <-p.stopChan:
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			if err := p.drain(ctx); err != nil {
				p.logger.Error("backlog drain failed", logger.Error(err))
			}
		}
	}
}

func (p *Poller) drain(ctx context.Context) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	posts, err := p.source.FetchUnanalyzed(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("fetch backlog: %w", err)
	}
	if len(posts) == 0 {
		p.logger.Debug("backlog empty")
		return nil
	}

	p.logger.Info("backlog found", logger.Int("count", len(posts)))
	if _, err := p.processor.Process(ctx, posts); err != nil {
		return fmt.Errorf("process backlog: %w", err)
	}
	return nil
}
