package metrics

import (
	"context"
	"log/slog"
	"time"
)

// Pruner periodically deletes analyses past the retention window
type Pruner struct {
	repo      *Repository
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

func NewPruner(repo *Repository, logger *slog.Logger, retention, interval time.Duration) *Pruner {
	if interval == 0 {
		interval = 1 * time.Hour
	}

	return &Pruner{
		repo:      repo,
		logger:    logger,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start runs one pass immediately, then one per interval until ctx ends or Stop
func (p *Pruner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("history pruner started",
		slog.Duration("retention", p.retention),
		slog.Duration("interval", p.interval),
	)

	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("history pruner stopped")
			return
		case <-p.done:
			p.logger.Info("history pruner stopped")
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) Stop() {
	close(p.done)
}

func (p *Pruner) prune(ctx context.Context) {
	deleted, err := p.repo.DeleteOlderThan(ctx, p.retention)
	if err != nil {
		p.logger.Error("failed to prune analyses", slog.String("error", err.Error()))
		return
	}
	if deleted > 0 {
		p.logger.Info("pruned analyses", slog.Int64("count", deleted))
	}
}
