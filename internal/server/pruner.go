package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// pruner deletes expired artifacts on a fixed interval.
type pruner struct {
	svc      Service
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
}

func newPruner(svc Service, maxAge, interval time.Duration, logger *zap.Logger) *pruner {
	return &pruner{svc: svc, maxAge: maxAge, interval: interval, logger: logger}
}

// run prunes once immediately, then on every tick until ctx is done.
func (p *pruner) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pruneOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pruneOnce(ctx)
		}
	}
}

func (p *pruner) pruneOnce(ctx context.Context) {
	res := p.svc.PruneOlderThan(ctx, p.maxAge)
	if !res.Success {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("retention prune failed", zap.String("error", res.Error))
		return
	}
	if res.DeletedCount > 0 {
		p.logger.Info("retention prune",
			zap.Int("deleted", res.DeletedCount),
			zap.Duration("max_age", p.maxAge),
		)
	}
}
