package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"nestmind/apps/gateway/internal/domain"
	"nestmind/apps/gateway/internal/service/ports"
)

// Heartbeat periodically emits a heartbeat event carrying the metrics snapshot.
type Heartbeat struct {
	cron *cron.Cron
}

func NewHeartbeat(spec string, metrics *Metrics, sink ports.EventSink) (*Heartbeat, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		snap := metrics.Snapshot()
		sink.Track(context.Background(), domain.Event{
			Name: domain.EventHeartbeat,
			At:   time.Now().UTC(),
			Attrs: map[string]interface{}{
				"uptime_s":   snap.Uptime,
				"goroutines": snap.Goroutines,
				"requests":   snap.Requests,
				"heap_inuse": snap.Memory.HeapInuse,
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("invalid heartbeat schedule %q: %w", spec, err)
	}
	return &Heartbeat{cron: c}, nil
}

func (h *Heartbeat) Start() {
	h.cron.Start()
}

// Stop halts scheduling and waits for a running beat to finish.
func (h *Heartbeat) Stop() {
	<-h.cron.Stop().Done()
}
