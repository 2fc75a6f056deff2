// Package observe carries ordered stage events out of the verification
// pipeline. Components receive a Sink instead of logging progress directly.
package observe

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event describes one completed pipeline stage.
type Event struct {
	Stage   string
	Summary string
	Elapsed time.Duration
	Attrs   []slog.Attr
}

// Sink receives stage events in the order stages complete.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Emit sends e to sink, tolerating a nil sink.
func Emit(ctx context.Context, sink Sink, e Event) {
	if sink == nil {
		return
	}
	sink.Emit(ctx, e)
}

// Start times a stage. The returned func emits the event when called.
func Start(ctx context.Context, sink Sink, stage string) func(summary string, attrs ...slog.Attr) {
	begin := time.Now()
	return func(summary string, attrs ...slog.Attr) {
		Emit(ctx, sink, Event{
			Stage:   stage,
			Summary: summary,
			Elapsed: time.Since(begin),
			Attrs:   attrs,
		})
	}
}

// LogSink writes events through slog.
type LogSink struct {
	Logger *slog.Logger
	Level  slog.Level
}

// NewLogSink logs events at debug level on logger, or slog.Default when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger, Level: slog.LevelDebug}
}

func (s *LogSink) Emit(ctx context.Context, e Event) {
	attrs := make([]slog.Attr, 0, len(e.Attrs)+2)
	attrs = append(attrs, slog.String("stage", e.Stage), slog.Duration("elapsed", e.Elapsed))
	attrs = append(attrs, e.Attrs...)
	s.Logger.LogAttrs(ctx, s.Level, e.Summary, attrs...)
}

// Recorder keeps every event in order. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Stages returns the recorded stage names in order.
func (r *Recorder) Stages() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Stage
	}
	return out
}

type multi []Sink

func (m multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		Emit(ctx, s, e)
	}
}

// Multi fans events out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
