package resync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
)

// Job is the periodic reconciliation trigger: every interval it refreshes
// each live session against the account service, so sessions that went
// degraded recover without waiting for user activity.
type Job struct {
	sessions *session.Manager
	tracker  *tracker.Service
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func New(sessions *session.Manager, trackerService *tracker.Service, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sessions: sessions,
		tracker:  trackerService,
		interval: interval,
		timeout:  30 * time.Second,
		logger:   logger,
	}
}

func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *Job) RunOnce(ctx context.Context) {
	if j.sessions == nil || j.tracker == nil {
		return
	}

	j.sessions.ForEach(func(sess *session.Session) {
		syncCtx, cancel := context.WithTimeout(ctx, j.timeout)
		defer cancel()

		if err := j.tracker.ForceReconcile(syncCtx, sess); err != nil {
			j.logger.Debug("periodic reconcile failed",
				zap.Int64("user_id", sess.Account().UserID),
				zap.Error(err),
			)
		}
	})
}
