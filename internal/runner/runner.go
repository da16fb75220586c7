package runner

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"

	"nestmind/apps/gateway/internal/domain"
	"nestmind/apps/gateway/internal/provider"
)

const (
	DefaultMaxTokens = 1024
	defaultTimeout   = 30 * time.Second

	ErrorCodeProviderNotConfigured = "provider_not_configured"
	ErrorCodeProviderNotSupported  = "provider_not_supported"
	ErrorCodeProviderRequestFailed = "provider_request_failed"
	ErrorCodeProviderInvalidReply  = "provider_invalid_reply"
)

type RunnerError struct {
	Code    string
	Message string
	Err     error
}

func (e *RunnerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *RunnerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Config selects the single provider a process talks to.
type Config struct {
	ProviderID string
	Model      string
	APIKey     string
	BaseURL    string
	Region     string
	Headers    map[string]string
	TimeoutMS  int
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type Completion struct {
	Text  string
	Usage *Usage
}

// Completer is a connected provider client. Implementations must be safe for
// concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error)
}

type ProviderAdapter interface {
	ID() string
	Connect(ctx context.Context, cfg Config, httpClient *http.Client) (Completer, error)
}

type Runner struct {
	cfg        Config
	httpClient *http.Client
	adapters   map[string]ProviderAdapter

	once    sync.Once
	client  Completer
	initErr error
}

func New(cfg Config) *Runner {
	return NewWithHTTPClient(cfg, nil)
}

func NewWithHTTPClient(cfg Config, client *http.Client) *Runner {
	if client == nil {
		client = &http.Client{Timeout: timeoutOf(cfg)}
	}
	r := &Runner{
		cfg:        cfg,
		httpClient: client,
		adapters:   map[string]ProviderAdapter{},
	}
	r.registerAdapter(&demoAdapter{})
	r.registerAdapter(&anthropicAdapter{})
	r.registerAdapter(&bedrockAdapter{})
	r.registerAdapter(&openAIAdapter{})
	r.registerAdapter(&geminiAdapter{})
	r.registerAdapter(&openAICompatibleAdapter{})
	return r
}

func (r *Runner) registerAdapter(adapter ProviderAdapter) {
	if adapter == nil {
		return
	}
	id := strings.TrimSpace(adapter.ID())
	if id == "" {
		return
	}
	r.adapters[id] = adapter
}

// Describe reports the resolved provider and model without connecting.
func (r *Runner) Describe() provider.Descriptor {
	return provider.Describe(r.cfg.ProviderID, r.cfg.Model)
}

// Invoke sends one prompt to the configured model. It never returns an error:
// every failure is folded into a GatewayResult with Source set to "error".
func (r *Runner) Invoke(ctx context.Context, prompt string, maxTokens int) (result domain.GatewayResult) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = r.failure(started, &RunnerError{
				Code:    ErrorCodeProviderRequestFailed,
				Message: fmt.Sprintf("provider call panicked: %v", rec),
			})
		}
	}()

	// the caller going away does not abort an in-flight model call
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeoutOf(r.cfg))
	defer cancel()

	client, err := r.connect(callCtx)
	if err != nil {
		return r.failure(started, err)
	}

	reply, err := client.Complete(callCtx, prompt, maxTokens)
	if err != nil {
		return r.failure(started, err)
	}
	if strings.TrimSpace(reply.Text) == "" {
		return r.failure(started, &RunnerError{Code: ErrorCodeProviderInvalidReply, Message: "provider response has empty content"})
	}

	text := reply.Text
	meta := domain.Meta{
		DurationMS: time.Since(started).Milliseconds(),
		Source:     domain.SourceModel,
	}
	if reply.Usage != nil {
		tokens := reply.Usage.InputTokens + reply.Usage.OutputTokens
		meta.TokensUsed = &tokens
	}
	return domain.GatewayResult{Text: &text, Meta: meta}
}

func (r *Runner) connect(ctx context.Context) (Completer, error) {
	r.once.Do(func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.client = nil
				r.initErr = &RunnerError{
					Code:    ErrorCodeProviderNotConfigured,
					Message: fmt.Sprintf("provider client setup panicked: %v", rec),
				}
				log.WithField("provider", r.cfg.ProviderID).WithError(r.initErr).Error("model provider unavailable")
			}
		}()
		r.client, r.initErr = r.dial(ctx)
		if r.initErr == nil && r.client == nil {
			r.initErr = &RunnerError{Code: ErrorCodeProviderNotConfigured, Message: "provider adapter returned no client"}
		}
		if r.initErr != nil {
			log.WithField("provider", r.cfg.ProviderID).WithError(r.initErr).Error("model provider unavailable")
		}
	})
	return r.client, r.initErr
}

func (r *Runner) dial(ctx context.Context) (Completer, error) {
	spec := provider.ResolveProvider(r.cfg.ProviderID)
	adapter, ok := r.adapters[spec.Adapter]
	if !ok {
		return nil, &RunnerError{
			Code:    ErrorCodeProviderNotSupported,
			Message: fmt.Sprintf("adapter %q is not supported", spec.Adapter),
		}
	}

	cfg := r.cfg
	cfg.ProviderID = spec.ID
	model, ok := provider.ResolveModelID(spec.ID, cfg.Model)
	if !ok {
		return nil, &RunnerError{Code: ErrorCodeProviderNotConfigured, Message: "model is required for active provider"}
	}
	cfg.Model = model
	if spec.RequiresAPIKey && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &RunnerError{Code: ErrorCodeProviderNotConfigured, Message: "provider api_key is required"}
	}
	if strings.TrimSpace(cfg.BaseURL) != "" && !spec.AllowCustomBaseURL {
		log.WithField("provider", spec.ID).Warn("provider does not accept a custom base url, ignoring it")
		cfg.BaseURL = ""
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = spec.DefaultBaseURL
	}
	return adapter.Connect(ctx, cfg, r.httpClient)
}

func (r *Runner) failure(started time.Time, err error) domain.GatewayResult {
	code := ErrorCodeProviderRequestFailed
	if runnerErr, ok := err.(*RunnerError); ok && runnerErr.Code != "" {
		code = runnerErr.Code
	}
	message := err.Error()
	if inner := unwrapMessage(err); inner != "" && inner != message {
		message = message + ": " + inner
	}
	log.WithFields(log.Fields{
		"provider": r.cfg.ProviderID,
		"code":     code,
	}).WithError(err).Warn("model call failed")

	return domain.GatewayResult{
		Meta: domain.Meta{
			DurationMS: time.Since(started).Milliseconds(),
			Source:     domain.SourceError,
			Error:      message,
		},
	}
}

func unwrapMessage(err error) string {
	runnerErr, ok := err.(*RunnerError)
	if !ok || runnerErr.Err == nil {
		return ""
	}
	return runnerErr.Err.Error()
}

func timeoutOf(cfg Config) time.Duration {
	if cfg.TimeoutMS > 0 {
		return time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return defaultTimeout
}
