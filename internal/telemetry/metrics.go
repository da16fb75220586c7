package telemetry

import (
	"context"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nestmind/apps/gateway/internal/domain"
)

// Metrics is an event sink backed by Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time
	requests atomic.Int64

	responses *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	tokens    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nestmind",
			Subsystem: "agent",
			Name:      "responses_total",
			Help:      "Agent responses, labeled by agent and model source.",
		}, []string{"agent", "source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nestmind",
			Subsystem: "agent",
			Name:      "model_duration_seconds",
			Help:      "Wall-clock time of the model call per agent.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"agent"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nestmind",
			Subsystem: "agent",
			Name:      "tokens_total",
			Help:      "Input plus output tokens reported by the model provider.",
		}, []string{"agent"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nestmind",
			Subsystem: "agent",
			Name:      "fallbacks_total",
			Help:      "Responses served from a canned or degraded payload, labeled by outcome.",
		}, []string{"agent", "outcome"}),
	}
	m.registry.MustRegister(
		m.responses,
		m.duration,
		m.tokens,
		m.fallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Track(_ context.Context, evt domain.Event) {
	switch evt.Name {
	case domain.EventAgentRequest:
		m.requests.Add(1)
	case domain.EventAgentResponse:
		m.responses.WithLabelValues(evt.Agent, evt.Source).Inc()
		m.duration.WithLabelValues(evt.Agent).Observe(float64(evt.DurationMS) / 1000)
		if evt.Tokens > 0 {
			m.tokens.WithLabelValues(evt.Agent).Add(float64(evt.Tokens))
		}
	case domain.EventAgentFallback:
		m.fallbacks.WithLabelValues(evt.Agent, evt.Outcome).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type MemorySnapshot struct {
	Alloc     uint64 `json:"alloc"`
	Sys       uint64 `json:"sys"`
	HeapInuse uint64 `json:"heapInuse"`
	NumGC     uint32 `json:"numGC"`
}

type Snapshot struct {
	Uptime     float64        `json:"uptime"`
	Memory     MemorySnapshot `json:"memory"`
	Goroutines int            `json:"goroutines"`
	Requests   int64          `json:"requests"`
	Timestamp  string         `json:"timestamp"`
}

// Snapshot reports process health in the shape served by /api/metrics.
func (m *Metrics) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return Snapshot{
		Uptime: time.Since(m.started).Seconds(),
		Memory: MemorySnapshot{
			Alloc:     mem.Alloc,
			Sys:       mem.Sys,
			HeapInuse: mem.HeapInuse,
			NumGC:     mem.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
		Requests:   m.requests.Load(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
	}
}
