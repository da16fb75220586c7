package provider

import "strings"

const (
	AdapterDemo             = "demo"
	AdapterAnthropic        = "anthropic"
	AdapterBedrock          = "bedrock"
	AdapterOpenAI           = "openai"
	AdapterGemini           = "gemini"
	AdapterOpenAICompatible = "openai-compatible"
)

type ModelSpec struct {
	ID            string
	Name          string
	ContextWindow int
}

type ProviderSpec struct {
	ID                 string
	Name               string
	APIKeyPrefix       string
	AllowCustomBaseURL bool
	DefaultBaseURL     string
	Adapter            string
	RequiresAPIKey     bool
	Models             []ModelSpec
}

var builtinProviders = map[string]ProviderSpec{
	"demo": {
		ID:      "demo",
		Name:    "DEMO",
		Adapter: AdapterDemo,
		Models:  []ModelSpec{{ID: "demo-chat", Name: "Offline demo"}},
	},
	"anthropic": {
		ID:                 "anthropic",
		Name:               "ANTHROPIC",
		APIKeyPrefix:       "ANTHROPIC_API_KEY",
		AllowCustomBaseURL: true,
		DefaultBaseURL:     "https://api.anthropic.com",
		Adapter:            AdapterAnthropic,
		RequiresAPIKey:     true,
		Models: []ModelSpec{
			{ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", ContextWindow: 200000},
			{ID: "claude-haiku-4-5-20251001", Name: "Claude Haiku 4.5", ContextWindow: 200000},
		},
	},
	"bedrock": {
		ID:      "bedrock",
		Name:    "AWS BEDROCK",
		Adapter: AdapterBedrock,
		Models: []ModelSpec{
			{ID: "anthropic.claude-3-sonnet-20240229-v1:0", Name: "Claude 3 Sonnet (Bedrock)", ContextWindow: 200000},
			{ID: "anthropic.claude-3-haiku-20240307-v1:0", Name: "Claude 3 Haiku (Bedrock)", ContextWindow: 200000},
		},
	},
	"openai": {
		ID:                 "openai",
		Name:               "OPENAI",
		APIKeyPrefix:       "OPENAI_API_KEY",
		AllowCustomBaseURL: true,
		DefaultBaseURL:     "https://api.openai.com/v1",
		Adapter:            AdapterOpenAI,
		RequiresAPIKey:     true,
		Models: []ModelSpec{
			{ID: "gpt-4o-mini", Name: "GPT-4o Mini", ContextWindow: 128000},
			{ID: "gpt-4.1-mini", Name: "GPT-4.1 Mini", ContextWindow: 128000},
		},
	},
	"gemini": {
		ID:             "gemini",
		Name:           "GEMINI",
		APIKeyPrefix:       "GEMINI_API_KEY",
		AllowCustomBaseURL: true,
		Adapter:            AdapterGemini,
		RequiresAPIKey:     true,
		Models: []ModelSpec{
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", ContextWindow: 1048576},
		},
	},
}

var adapterNames = map[string]string{
	AdapterDemo:             "demo",
	AdapterAnthropic:        "anthropic",
	AdapterBedrock:          "anthropic on AWS Bedrock",
	AdapterOpenAI:           "openai",
	AdapterGemini:           "gemini",
	AdapterOpenAICompatible: "openai Compatible",
}

// ResolveProvider returns the builtin spec for providerID. Unknown ids are treated
// as custom openai-compatible endpoints.
func ResolveProvider(providerID string) ProviderSpec {
	id := normalizeProviderID(providerID)
	if id == "" {
		id = AdapterDemo
	}
	if spec, ok := builtinProviders[id]; ok {
		return cloneProviderSpec(spec)
	}
	return ProviderSpec{
		ID:                 id,
		Name:               strings.ToUpper(id),
		APIKeyPrefix:       EnvPrefix(id) + "_API_KEY",
		AllowCustomBaseURL: true,
		Adapter:            AdapterOpenAICompatible,
		RequiresAPIKey:     true,
		Models:             []ModelSpec{},
	}
}

func IsBuiltinProviderID(providerID string) bool {
	id := normalizeProviderID(providerID)
	if id == "" {
		return false
	}
	_, ok := builtinProviders[id]
	return ok
}

// ResolveModelID picks requested if the provider knows it, the provider default
// when requested is empty, and passes requested through for custom providers.
func ResolveModelID(providerID, requested string) (string, bool) {
	modelID := strings.TrimSpace(requested)
	spec := ResolveProvider(providerID)
	if modelID == "" {
		if len(spec.Models) == 0 {
			return "", false
		}
		return spec.Models[0].ID, true
	}
	for _, model := range spec.Models {
		if model.ID == modelID {
			return modelID, true
		}
	}
	// hosted providers ship new model ids faster than this catalog
	if spec.Adapter == AdapterDemo {
		return "", false
	}
	return modelID, true
}

func EnvPrefix(providerID string) string {
	prefix := strings.ToUpper(strings.TrimSpace(providerID))
	if prefix == "" {
		return "PROVIDER"
	}
	replacer := strings.NewReplacer("-", "_", ".", "_", " ", "_")
	return replacer.Replace(prefix)
}

func normalizeProviderID(providerID string) string {
	return strings.ToLower(strings.TrimSpace(providerID))
}

func cloneProviderSpec(in ProviderSpec) ProviderSpec {
	out := in
	out.Models = make([]ModelSpec, 0, len(in.Models))
	out.Models = append(out.Models, in.Models...)
	return out
}

// Descriptor summarizes the configured provider for status endpoints.
type Descriptor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Adapter       string `json:"adapter"`
	AdapterName   string `json:"adapterName"`
	Builtin       bool   `json:"builtin"`
	Model         string `json:"model"`
	ModelName     string `json:"modelName,omitempty"`
	ContextWindow int    `json:"contextWindow,omitempty"`
	CustomBaseURL bool   `json:"customBaseUrl"`
	Ready         bool   `json:"ready"`
}

// Describe resolves providerID and requestedModel the same way the runner
// does. Ready is false when no model can be resolved.
func Describe(providerID, requestedModel string) Descriptor {
	spec := ResolveProvider(providerID)
	out := Descriptor{
		ID:            spec.ID,
		Name:          spec.Name,
		Adapter:       spec.Adapter,
		AdapterName:   adapterNames[spec.Adapter],
		Builtin:       IsBuiltinProviderID(spec.ID),
		CustomBaseURL: spec.AllowCustomBaseURL,
	}
	model, ok := ResolveModelID(spec.ID, requestedModel)
	if !ok {
		return out
	}
	out.Model = model
	out.Ready = true
	for _, m := range spec.Models {
		if m.ID == model {
			out.ModelName = m.Name
			out.ContextWindow = m.ContextWindow
			break
		}
	}
	return out
}
