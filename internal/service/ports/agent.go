package ports

import (
	"context"

	"nestmind/apps/gateway/internal/domain"
)

type ModelGateway interface {
	Invoke(ctx context.Context, prompt string, maxTokens int) domain.GatewayResult
}

// EventSink receives telemetry. Track must not block the request path.
type EventSink interface {
	Track(ctx context.Context, evt domain.Event)
}
