package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/logger"
)

// Sink receives ledger notifications after a call commits
//
//go:generate mockgen -source=sink.go -destination=../mocks/sink.go -package=mocks -mock_names=Sink=MockSink
type Sink interface {
	Publish(ctx context.Context, event domain.Event) error
}

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(ulid.DefaultEntropy(), 0)
)

// NewID returns a lexically sortable event id for t.
// Ids created within the same millisecond stay ordered.
func NewID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

type logSink struct{}

// NewLogSink creates a sink that writes events to the structured log
func NewLogSink() Sink {
	return &logSink{}
}

func (s *logSink) Publish(ctx context.Context, event domain.Event) error {
	logger.InfoCtx(ctx, "Ledger event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("project_id", event.ProjectID),
		zap.Any("data", event.Data),
	)
	return nil
}

type multiSink struct {
	sinks []Sink
}

// NewMultiSink fans events out to every sink.
// All sinks are attempted; their errors are joined.
func NewMultiSink(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (s *multiSink) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewRecorder creates an empty in-memory sink
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in publish order
func (r *Recorder) Types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// Reset drops all recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
