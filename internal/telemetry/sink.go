// Package telemetry fans agent events out to logs, streams and metrics. Sinks
// never fail the request that produced the event.
package telemetry

import (
	"context"
	"sync"

	"github.com/apex/log"

	"nestmind/apps/gateway/internal/domain"
	"nestmind/apps/gateway/internal/service/ports"
)

type Nop struct{}

func (Nop) Track(context.Context, domain.Event) {}

// LogSink writes every event as a structured log line.
type LogSink struct {
	Logger log.Interface
}

func (s LogSink) Track(_ context.Context, evt domain.Event) {
	logger := s.Logger
	if logger == nil {
		logger = log.Log
	}
	fields := log.Fields{
		"event":  evt.Name,
		"agent":  evt.Agent,
		"source": evt.Source,
	}
	if evt.RequestID != "" {
		fields["request_id"] = evt.RequestID
	}
	if evt.Outcome != "" {
		fields["outcome"] = evt.Outcome
	}
	if evt.DurationMS > 0 {
		fields["duration_ms"] = evt.DurationMS
	}
	if evt.Tokens > 0 {
		fields["tokens"] = evt.Tokens
	}
	for k, v := range evt.Attrs {
		fields[k] = v
	}
	entry := logger.WithFields(fields)
	if evt.Error != "" {
		entry.WithField("error", evt.Error).Warn("telemetry")
		return
	}
	entry.Info("telemetry")
}

type multi []ports.EventSink

// Multi delivers each event to every sink in order.
func Multi(sinks ...ports.EventSink) ports.EventSink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Track(ctx context.Context, evt domain.Event) {
	for _, s := range m {
		s.Track(ctx, evt)
	}
}

// Async moves delivery to a background goroutine. Events are dropped when the
// buffer is full.
type Async struct {
	next    ports.EventSink
	queue   chan domain.Event
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped func(domain.Event)
}

func NewAsync(next ports.EventSink, buffer int) *Async {
	if buffer <= 0 {
		buffer = 256
	}
	a := &Async{
		next:  next,
		queue: make(chan domain.Event, buffer),
		done:  make(chan struct{}),
		dropped: func(evt domain.Event) {
			log.WithField("event", evt.Name).Warn("telemetry buffer full, dropping event")
		},
	}
	go a.loop()
	return a
}

func (a *Async) Track(_ context.Context, evt domain.Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- evt:
	default:
		a.dropped(evt)
	}
}

func (a *Async) loop() {
	defer close(a.done)
	for evt := range a.queue {
		a.next.Track(context.Background(), evt)
	}
}

// Close drains queued events and stops the worker.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}
