package achievements

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

// LogSink records achievement progress in the application log. It stands in
// for the host-app notification channel in deployments that do not wire
// one.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, userID int64, category enums.ActionCategory, at time.Time) error {
	s.log.Info("achievement progress",
		zap.Int64("user_id", userID),
		zap.String("category", string(category)),
		zap.Time("at", at),
	)
	return nil
}
