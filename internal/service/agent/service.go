package agent

import (
	"context"
	"errors"
	"time"

	"nestmind/apps/gateway/internal/domain"
	"nestmind/apps/gateway/internal/normalize"
	"nestmind/apps/gateway/internal/observability"
	"nestmind/apps/gateway/internal/prompt"
	"nestmind/apps/gateway/internal/service/ports"
)

const (
	DefaultHistoryWindow = 8
	DefaultMaxTokens     = 1024
	DefaultChatMaxTokens = 512
)

// Settings tunes the dispatcher. HistoryWindow <= 0 disables windowing; zero
// token budgets fall back to the defaults.
type Settings struct {
	HistoryWindow int
	MaxTokens     int
	ChatMaxTokens int
}

func DefaultSettings() Settings {
	return Settings{
		HistoryWindow: DefaultHistoryWindow,
		MaxTokens:     DefaultMaxTokens,
		ChatMaxTokens: DefaultChatMaxTokens,
	}
}

type Dependencies struct {
	Gateway  ports.ModelGateway
	Events   ports.EventSink
	Settings Settings
}

type Service struct {
	deps Dependencies
}

func NewService(deps Dependencies) *Service {
	if deps.Settings.MaxTokens <= 0 {
		deps.Settings.MaxTokens = DefaultMaxTokens
	}
	if deps.Settings.ChatMaxTokens <= 0 {
		deps.Settings.ChatMaxTokens = DefaultChatMaxTokens
	}
	return &Service{deps: deps}
}

func (s *Service) Settings() Settings {
	return s.deps.Settings
}

// MaxTokensFor is the generation budget used for req.
func (s *Service) MaxTokensFor(req domain.AgentRequest) int {
	if req.Structured() {
		return s.deps.Settings.MaxTokens
	}
	return s.deps.Settings.ChatMaxTokens
}

// Handle runs one request through build, invoke and normalize. It always
// returns a complete response; model failures surface only in its meta.
func (s *Service) Handle(ctx context.Context, req domain.AgentRequest) domain.Response {
	if err := s.validateDependencies(); err != nil {
		res := domain.GatewayResult{Meta: domain.Meta{Source: domain.SourceError, Error: err.Error()}}
		return normalize.Normalize(req, res)
	}

	if !req.Structured() {
		req.Conversational = true
		req.Kind = domain.ParseAgentKind(string(req.Kind))
		req.Chat = req.Chat.Canonical()
	}
	history := Window(req.Chat.History, s.deps.Settings.HistoryWindow)

	requestID := observability.RequestIDFromContext(ctx)
	s.track(ctx, domain.Event{Name: domain.EventAgentRequest, RequestID: requestID, Agent: string(req.Kind)})

	text := prompt.Build(req, history)
	res := s.deps.Gateway.Invoke(ctx, text, s.MaxTokensFor(req))
	out, outcome := normalize.Result(req, res)

	evt := domain.Event{
		Name:       domain.EventAgentResponse,
		RequestID:  requestID,
		Agent:      string(req.Kind),
		Source:     res.Meta.Source,
		Outcome:    outcome.String(),
		DurationMS: res.Meta.DurationMS,
		Error:      res.Meta.Error,
	}
	if res.Meta.TokensUsed != nil {
		evt.Tokens = *res.Meta.TokensUsed
	}
	s.track(ctx, evt)
	if outcome != normalize.Valid {
		evt.Name = domain.EventAgentFallback
		s.track(ctx, evt)
	}
	return out
}

// Window keeps the most recent n turns in their original order. n <= 0 keeps all.
func Window(history []domain.ConversationTurn, n int) []domain.ConversationTurn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func (s *Service) track(ctx context.Context, evt domain.Event) {
	if s.deps.Events == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	s.deps.Events.Track(ctx, evt)
}

func (s *Service) validateDependencies() error {
	if s == nil {
		return errors.New("agent service is unavailable")
	}
	if s.deps.Gateway == nil {
		return errors.New("model gateway is not configured")
	}
	return nil
}
