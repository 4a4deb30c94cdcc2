package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
)

// Job evicts metering sessions that have been idle longer than the TTL.
// Session state is a cache over the account service, so eviction loses
// nothing durable.
type Job struct {
	sessions *session.Manager
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(sessions *session.Manager, ttl, interval time.Duration, logger *zap.Logger) *Job {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

func (j *Job) RunOnce() {
	if j.sessions == nil {
		return
	}

	removed := j.sessions.SweepIdle(j.ttl, j.now())
	if removed > 0 {
		j.logger.Info("idle session sweep completed",
			zap.Int("removed", removed),
			zap.Int("remaining", j.sessions.Len()),
		)
	}
}
