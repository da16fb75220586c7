package runner

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"nestmind/apps/gateway/internal/provider"
)

type openAIAdapter struct{}

func (a *openAIAdapter) ID() string {
	return provider.AdapterOpenAI
}

func (a *openAIAdapter) Connect(_ context.Context, cfg Config, httpClient *http.Client) (Completer, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	for key, value := range cfg.Headers {
		opts = append(opts, option.WithHeader(key, value))
	}
	client := openai.NewClient(opts...)
	return &responsesClient{client: &client, model: cfg.Model}, nil
}

type responsesClient struct {
	client *openai.Client
	model  string
}

func (c *responsesClient) Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	result, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
		MaxOutputTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return Completion{}, &RunnerError{
			Code:    ErrorCodeProviderRequestFailed,
			Message: "provider request failed",
			Err:     err,
		}
	}
	return Completion{
		Text: result.OutputText(),
		Usage: &Usage{
			InputTokens:  int(result.Usage.InputTokens),
			OutputTokens: int(result.Usage.OutputTokens),
		},
	}, nil
}
