package runner

import (
	"context"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"nestmind/apps/gateway/internal/provider"
)

const defaultBedrockRegion = "us-west-2"

type anthropicAdapter struct{}

func (a *anthropicAdapter) ID() string {
	return provider.AdapterAnthropic
}

func (a *anthropicAdapter) Connect(_ context.Context, cfg Config, httpClient *http.Client) (Completer, error) {
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
	client := anthropic.NewClient(opts...)
	return &messagesClient{client: &client, model: cfg.Model}, nil
}

// bedrockAdapter reaches Claude through AWS Bedrock using the default AWS
// credential chain (env, shared profile, instance role).
type bedrockAdapter struct{}

func (a *bedrockAdapter) ID() string {
	return provider.AdapterBedrock
}

func (a *bedrockAdapter) Connect(ctx context.Context, cfg Config, httpClient *http.Client) (Completer, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultBedrockRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, &RunnerError{
			Code:    ErrorCodeProviderNotConfigured,
			Message: "failed to load aws configuration",
			Err:     err,
		}
	}
	client := anthropic.NewClient(
		bedrock.WithConfig(awsCfg),
		option.WithHTTPClient(httpClient),
	)
	return &messagesClient{client: &client, model: cfg.Model}, nil
}

type messagesClient struct {
	client *anthropic.Client
	model  string
}

func (c *messagesClient) Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Completion{}, &RunnerError{
			Code:    ErrorCodeProviderRequestFailed,
			Message: "provider request failed",
			Err:     err,
		}
	}

	text := ""
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text = tb.Text
			break
		}
	}
	if text == "" {
		return Completion{}, &RunnerError{Code: ErrorCodeProviderInvalidReply, Message: "provider response has no text content"}
	}
	return Completion{
		Text: text,
		Usage: &Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}
