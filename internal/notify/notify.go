// Package notify carries failures from the core to whoever shows them to the
// user. Every store takes a Sink at construction.
package notify

import (
	"errors"
	"log/slog"
	"sync"

	apperrors "github.com/shhac/impulse/internal/errors"
)

// Sink receives every reported failure exactly once.
type Sink interface {
	Report(err error)
}

// Func adapts a plain function to a Sink.
type Func func(err error)

func (f Func) Report(err error) {
	if f != nil && err != nil {
		f(err)
	}
}

// Discard drops every report.
var Discard Sink = Func(nil)

// LogSink writes reports to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Report(err error) {
	if err == nil || s.Logger == nil {
		return
	}
	attrs := []any{slog.Any("error", err)}
	var opErr *apperrors.OpError
	if errors.As(err, &opErr) {
		attrs = append(attrs, slog.String("op", opErr.Op))
		if opErr.ID != "" {
			attrs = append(attrs, slog.String("request_id", opErr.ID))
		}
	}
	s.Logger.Error("operation failed", attrs...)
}

// Multi fans a report out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return Func(func(err error) {
		for _, s := range sinks {
			if s != nil {
				s.Report(err)
			}
		}
	})
}

// Swap forwards reports to a sink that can be replaced later, so the core can
// be built before the window that displays its failures exists.
type Swap struct {
	mu     sync.RWMutex
	target Sink
}

// Set replaces the target. A nil target drops reports.
func (s *Swap) Set(target Sink) {
	s.mu.Lock()
	s.target = target
	s.mu.Unlock()
}

func (s *Swap) Report(err error) {
	s.mu.RLock()
	target := s.target
	s.mu.RUnlock()
	if target != nil && err != nil {
		target.Report(err)
	}
}

// Recorder keeps every report. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *Recorder) Report(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// Errors returns a copy of everything reported so far.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Len returns the number of reports.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// Ops returns the operation name of each OpError reported, in order.
func (r *Recorder) Ops() []string {
	var ops []string
	for _, err := range r.Errors() {
		var opErr *apperrors.OpError
		if errors.As(err, &opErr) {
			ops = append(ops, opErr.Op)
		}
	}
	return ops
}

// Reset forgets all recorded reports.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.errs = nil
	r.mu.Unlock()
}

// Op reports a failed operation on id through sink.
func Op(sink Sink, op, id string, cause error) {
	if sink == nil || cause == nil {
		return
	}
	sink.Report(&apperrors.OpError{Op: op, ID: id, Err: cause})
}
