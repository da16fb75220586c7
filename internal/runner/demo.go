package runner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"nestmind/apps/gateway/internal/provider"
)

// demoAdapter is an offline, deterministic model. Structured prompts get a
// schema-valid JSON object keyed off the output format the prompt asks for;
// everything else gets a short plain-text reply.
type demoAdapter struct{}

func (a *demoAdapter) ID() string {
	return provider.AdapterDemo
}

func (a *demoAdapter) Connect(context.Context, Config, *http.Client) (Completer, error) {
	return demoClient{}, nil
}

type demoClient struct{}

func (demoClient) Complete(_ context.Context, prompt string, _ int) (Completion, error) {
	sum := sha256.Sum256([]byte(prompt))
	short := hex.EncodeToString(sum[:4])

	var out interface{}
	switch {
	case strings.Contains(prompt, `"priceRange"`):
		out = map[string]interface{}{
			"answer":     fmt.Sprintf("Demo housing answer (%s).", short),
			"tips":       []string{"Compare at least three listings", "Ask which utilities are included"},
			"priceRange": map[string]interface{}{"low": 600, "high": 1100},
		}
	case strings.Contains(prompt, `"monthlySummary"`):
		out = map[string]interface{}{
			"answer":         fmt.Sprintf("Demo budget answer (%s).", short),
			"anomalies":      []interface{}{},
			"monthlySummary": map[string]interface{}{"total": 0, "projected": 0, "savings": 0},
			"topTip":         "Write down every purchase for a week.",
		}
	case strings.Contains(prompt, `"actionSteps"`):
		out = map[string]interface{}{
			"answer":        fmt.Sprintf("Demo campus answer (%s).", short),
			"actionSteps":   []string{"Visit your international student office"},
			"importantNote": "Keep your I-20 and passport safe.",
			"relatedTopics": []string{"student services"},
		}
	case strings.Contains(prompt, `"nextSteps"`):
		out = map[string]interface{}{
			"answer":        fmt.Sprintf("Demo career answer (%s).", short),
			"nextSteps":     []string{"Visit the career center"},
			"companies":     []string{"Example Corp"},
			"visaNote":      "Check your OPT timeline with your DSO.",
			"marketOutlook": "Steady.",
		}
	default:
		return Completion{
			Text:  fmt.Sprintf("demo reply (%s): ask me anything about student life.", short),
			Usage: demoUsage(prompt, 8),
		}, nil
	}

	b, err := json.Marshal(out)
	if err != nil {
		return Completion{}, &RunnerError{Code: ErrorCodeProviderInvalidReply, Message: "failed to encode demo reply", Err: err}
	}
	return Completion{Text: string(b), Usage: demoUsage(prompt, len(strings.Fields(string(b))))}, nil
}

func demoUsage(prompt string, output int) *Usage {
	return &Usage{InputTokens: len(strings.Fields(prompt)), OutputTokens: output}
}
