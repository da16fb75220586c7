package runner

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"nestmind/apps/gateway/internal/provider"
)

type geminiAdapter struct{}

func (a *geminiAdapter) ID() string {
	return provider.AdapterGemini
}

func (a *geminiAdapter) Connect(ctx context.Context, cfg Config, httpClient *http.Client) (Completer, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, &RunnerError{
			Code:    ErrorCodeProviderNotConfigured,
			Message: "failed to create gemini client",
			Err:     err,
		}
	}
	return &generateContentClient{client: client, model: cfg.Model}, nil
}

type generateContentClient struct {
	client *genai.Client
	model  string
}

func (c *generateContentClient) Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return Completion{}, &RunnerError{
			Code:    ErrorCodeProviderRequestFailed,
			Message: "provider request failed",
			Err:     err,
		}
	}
	out := Completion{Text: resp.Text()}
	if usage := resp.UsageMetadata; usage != nil {
		out.Usage = &Usage{
			InputTokens:  int(usage.PromptTokenCount),
			OutputTokens: int(usage.CandidatesTokenCount),
		}
	}
	return out, nil
}
