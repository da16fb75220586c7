package adapters

import (
	"context"

	"nestmind/apps/gateway/internal/domain"
	"nestmind/apps/gateway/internal/runner"
)

type ModelGateway struct {
	Runner     *runner.Runner
	InvokeFunc func(ctx context.Context, prompt string, maxTokens int) domain.GatewayResult
}

func (a ModelGateway) Invoke(ctx context.Context, prompt string, maxTokens int) domain.GatewayResult {
	if a.InvokeFunc != nil {
		return a.InvokeFunc(ctx, prompt, maxTokens)
	}
	if a.Runner == nil {
		return domain.GatewayResult{Meta: domain.Meta{Source: domain.SourceError, Error: "model gateway is unavailable"}}
	}
	return a.Runner.Invoke(ctx, prompt, maxTokens)
}

type EventSink struct {
	TrackFunc func(ctx context.Context, evt domain.Event)
}

func (a EventSink) Track(ctx context.Context, evt domain.Event) {
	if a.TrackFunc == nil {
		return
	}
	a.TrackFunc(ctx, evt)
}
