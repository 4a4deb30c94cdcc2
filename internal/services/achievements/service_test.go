package achievements

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

type sinkStub struct {
	mu     sync.Mutex
	events []int64
	err    error
}

func (s *sinkStub) Notify(_ context.Context, userID int64, _ enums.ActionCategory, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, userID)
	return s.err
}

func (s *sinkStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestRecordDeliversEvents(t *testing.T) {
	sink := &sinkStub{}
	svc := NewService(sink, nil)

	svc.Record(42, enums.ActionCategoryGeneration)
	svc.Record(42, enums.ActionCategoryImage)
	svc.Close()

	if sink.count() != 2 {
		t.Fatalf("expected 2 delivered events, got %d", sink.count())
	}
}

func TestRecordNeverFailsOnSinkError(t *testing.T) {
	sink := &sinkStub{err: errors.New("remote down")}
	svc := NewService(sink, nil)

	svc.Record(42, enums.ActionCategoryGeneration)
	svc.Close()

	if sink.count() != 1 {
		t.Fatalf("event should still reach the sink, got %d", sink.count())
	}
}

func TestRecordIgnoresInvalidUser(t *testing.T) {
	sink := &sinkStub{}
	svc := NewService(sink, nil)

	svc.Record(0, enums.ActionCategoryGeneration)
	svc.Close()

	if sink.count() != 0 {
		t.Fatalf("invalid user must be dropped, got %d events", sink.count())
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	svc := NewService(nil, nil)
	svc.Record(42, enums.ActionCategoryGeneration)
	svc.Close()
}
