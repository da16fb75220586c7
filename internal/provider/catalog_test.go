package provider

import "testing"

func TestResolveProviderFallsBackToOpenAICompatible(t *testing.T) {
	spec := ResolveProvider("My-Proxy")
	if spec.Adapter != AdapterOpenAICompatible {
		t.Fatalf("expected openai-compatible adapter, got=%q", spec.Adapter)
	}
	if spec.APIKeyPrefix != "MY_PROXY_API_KEY" {
		t.Fatalf("unexpected api key prefix: %q", spec.APIKeyPrefix)
	}
	if !spec.RequiresAPIKey || !spec.AllowCustomBaseURL {
		t.Fatalf("expected custom provider to require an api key and accept a base url: %+v", spec)
	}
	if spec.Name != "MY-PROXY" {
		t.Fatalf("unexpected name: %q", spec.Name)
	}
}

func TestResolveProviderEmptyIsDemo(t *testing.T) {
	if got := ResolveProvider("  ").Adapter; got != AdapterDemo {
		t.Fatalf("expected demo adapter, got=%q", got)
	}
}

func TestIsBuiltinProviderID(t *testing.T) {
	for _, id := range []string{"demo", "Anthropic", " bedrock ", "openai", "gemini"} {
		if !IsBuiltinProviderID(id) {
			t.Fatalf("expected %q to be builtin", id)
		}
	}
	for _, id := range []string{"", "my-proxy", "openai-compatible"} {
		if IsBuiltinProviderID(id) {
			t.Fatalf("expected %q not to be builtin", id)
		}
	}
}

func TestEnvPrefix(t *testing.T) {
	cases := map[string]string{
		"":              "PROVIDER",
		"my-proxy":      "MY_PROXY",
		"campus.llm v2": "CAMPUS_LLM_V2",
	}
	for in, want := range cases {
		if got := EnvPrefix(in); got != want {
			t.Fatalf("EnvPrefix(%q)=%q want %q", in, got, want)
		}
	}
}

func TestResolveModelID(t *testing.T) {
	got, ok := ResolveModelID("bedrock", "")
	if !ok || got != "anthropic.claude-3-sonnet-20240229-v1:0" {
		t.Fatalf("expected bedrock default model, got=%q ok=%v", got, ok)
	}

	got, ok = ResolveModelID("custom-openai", "my-model")
	if !ok || got != "my-model" {
		t.Fatalf("expected passthrough for custom provider, got=%q ok=%v", got, ok)
	}

	if _, ok := ResolveModelID("custom-openai", ""); ok {
		t.Fatalf("expected custom provider without model to be unresolved")
	}

	if _, ok := ResolveModelID("demo", "gpt-4o"); ok {
		t.Fatalf("expected demo provider to reject foreign model ids")
	}
}

func TestResolveProviderReturnsCopy(t *testing.T) {
	spec := ResolveProvider("openai")
	spec.Models[0].ID = "mutated"
	if got, _ := ResolveModelID("openai", ""); got != "gpt-4o-mini" {
		t.Fatalf("catalog was mutated through a resolved spec: %q", got)
	}
}

func TestDescribeBuiltinDefaultModel(t *testing.T) {
	got := Describe("bedrock", "")
	want := Descriptor{
		ID:            "bedrock",
		Name:          "AWS BEDROCK",
		Adapter:       AdapterBedrock,
		AdapterName:   "anthropic on AWS Bedrock",
		Builtin:       true,
		Model:         "anthropic.claude-3-sonnet-20240229-v1:0",
		ModelName:     "Claude 3 Sonnet (Bedrock)",
		ContextWindow: 200000,
		Ready:         true,
	}
	if got != want {
		t.Fatalf("unexpected descriptor:\n got=%+v\nwant=%+v", got, want)
	}
}

func TestDescribeCustomProvider(t *testing.T) {
	got := Describe("my-proxy", "llama-3")
	if got.Builtin || !got.Ready || got.Model != "llama-3" || got.ContextWindow != 0 {
		t.Fatalf("unexpected descriptor: %+v", got)
	}
	if got.AdapterName != "openai Compatible" || !got.CustomBaseURL {
		t.Fatalf("unexpected adapter info: %+v", got)
	}

	if Describe("demo", "gpt-4o").Ready {
		t.Fatalf("expected demo with a foreign model to be unready")
	}
}
