package achievements

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

const defaultQueueSize = 64

// Sink receives achievement progress events. Implementations may call out
// over the network; the service shields callers from their latency and
// failures.
type Sink interface {
	Notify(ctx context.Context, userID int64, category enums.ActionCategory, at time.Time) error
}

// Service is the best-effort achievement side-channel. Record never blocks
// and never fails the caller: events queue into a buffered channel, a
// single worker drains it, and overflow or sink errors are logged and
// dropped.
type Service struct {
	sink  Sink
	log   *zap.Logger
	queue chan event
	done  chan struct{}
	once  sync.Once
	now   func() time.Time
}

type event struct {
	userID   int64
	category enums.ActionCategory
	at       time.Time
}

func NewService(sink Sink, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		sink:  sink,
		log:   log,
		queue: make(chan event, defaultQueueSize),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	go s.run()
	return s
}

// Record enqueues one progress event. It returns immediately; a full queue
// drops the event.
func (s *Service) Record(userID int64, category enums.ActionCategory) {
	if userID <= 0 {
		return
	}

	select {
	case s.queue <- event{userID: userID, category: category, at: s.now().UTC()}:
	default:
		s.log.Debug("achievement event dropped, queue full",
			zap.Int64("user_id", userID),
		)
	}
}

// Close drains the queue and stops the worker.
func (s *Service) Close() {
	s.once.Do(func() {
		close(s.queue)
		<-s.done
	})
}

func (s *Service) run() {
	defer close(s.done)

	for e := range s.queue {
		if s.sink == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.sink.Notify(ctx, e.userID, e.category, e.at); err != nil {
			s.log.Debug("achievement notify failed",
				zap.Int64("user_id", e.userID),
				zap.Error(err),
			)
		}
		cancel()
	}
}
