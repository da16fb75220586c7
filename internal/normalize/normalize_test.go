package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestmind/apps/gateway/internal/domain"
)

func failedResult() domain.GatewayResult {
	return domain.GatewayResult{Meta: domain.Meta{DurationMS: 12, Source: domain.SourceError, Error: "provider request failed"}}
}

func okResult(text string) domain.GatewayResult {
	tokens := 99
	return domain.GatewayResult{Text: &text, Meta: domain.Meta{DurationMS: 340, TokensUsed: &tokens, Source: domain.SourceModel}}
}

// every key the success path can populate must be present in the JSON
func requireKeys(t *testing.T, resp domain.Response, keys ...string) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &obj))
	for _, key := range append(keys, "meta") {
		assert.Contains(t, obj, key)
	}
	return obj
}

func TestFallbackCoversEveryAgent(t *testing.T) {
	t.Parallel()

	for _, kind := range domain.AgentKinds() {
		req := domain.AgentRequest{Kind: kind}
		resp := Normalize(req, failedResult())
		require.NotNil(t, resp, "kind=%s", kind)
		assert.Equal(t, domain.SourceError, resp.ResponseMeta().Source, "kind=%s", kind)
		assert.Equal(t, "provider request failed", resp.ResponseMeta().Error)
	}

	chat := Normalize(domain.ChatAgentRequest(domain.ChatRequest{Agent: "career"}), failedResult())
	assert.Equal(t, domain.ChatResponse{Response: ChatFallbackText, Meta: failedResult().Meta}, chat)
}

func TestHousingFallbackLiterals(t *testing.T) {
	t.Parallel()

	meta := failedResult().Meta
	want := domain.HousingResponse{
		Answer: "I'm having trouble connecting right now. The housing market near most universities ranges from $500-1200/month for shared apartments. Check Facebook groups for your university and Zillow for listings. Always read the lease carefully before signing.",
		Tips: []string{
			"Check Facebook groups for student housing",
			"Never pay deposit before seeing the place",
			"Ask about utilities included or not",
		},
		PriceRange: &domain.PriceRange{Low: 500, High: 1200},
		Meta:       meta,
	}
	assert.Equal(t, want, Normalize(domain.AgentRequest{Kind: domain.AgentHousing}, failedResult()))
}

func TestCareerFallbackLiterals(t *testing.T) {
	t.Parallel()

	want := domain.CareerResponse{
		Answer: "The job market for international students is competitive but not impossible. Start with your university's career center - they often have connections with companies that sponsor visas. Apply to large tech companies and consulting firms early, they have the most established sponsorship programs.",
		NextSteps: []string{
			"Update your LinkedIn profile",
			"Visit university career center",
			"Start applying 6 months before graduation",
		},
		Companies:     []string{"Amazon", "Google", "Microsoft", "Deloitte", "JP Morgan"},
		VisaNote:      "On F1 visa, you get 12 months OPT (36 months if STEM). Apply for OPT 90 days before graduation.",
		MarketOutlook: "Tech and engineering fields have the strongest demand for international talent.",
		Meta:          failedResult().Meta,
	}
	assert.Equal(t, want, Normalize(domain.AgentRequest{Kind: domain.AgentCareer}, failedResult()))
}

func TestGuideFallbackLiterals(t *testing.T) {
	t.Parallel()

	want := domain.GuideResponse{
		Answer: "That's a great question. For most campus-related things, your international student office is the best first stop. They deal with this stuff daily and can give you advice specific to your situation. Also check your university's website for student resources.",
		ActionSteps: []string{
			"Visit your international student office",
			"Check university website for resources",
			"Join student groups on social media",
		},
		ImportantNote: "Always keep your I-20 and passport documents safe and accessible.",
		RelatedTopics: []string{"student services", "campus resources"},
		Meta:          failedResult().Meta,
	}
	assert.Equal(t, want, Normalize(domain.AgentRequest{Kind: domain.AgentGuide}, failedResult()))
}

func TestJSONReplyWithFencedSnippetStaysValid(t *testing.T) {
	t.Parallel()

	reply := "{\"answer\":\"Run this:\\n```bash\\nls\\n```\",\"nextSteps\":[\"a\"],\"companies\":[\"b\"],\"visaNote\":\"c\",\"marketOutlook\":\"d\"}"
	req := domain.AgentRequest{Kind: domain.AgentCareer}

	got, outcome := Result(req, okResult(reply))
	assert.Equal(t, Valid, outcome)
	career := got.(domain.CareerResponse)
	assert.Equal(t, "Run this:\n```bash\nls\n```", career.Answer)
	assert.Equal(t, []string{"a"}, career.NextSteps)
	assert.Equal(t, []string{"b"}, career.Companies)
	assert.Equal(t, "c", career.VisaNote)
	assert.Equal(t, "d", career.MarketOutlook)
	assert.Equal(t, Valid, Classify(domain.AgentCareer, &reply))
}

func TestBudgetFallbackArithmetic(t *testing.T) {
	t.Parallel()

	income := 500.0
	expenses := []domain.Expense{{Amount: 40}, {Amount: 25}, {Amount: 10}}

	withIncome := Normalize(domain.AgentRequest{Kind: domain.AgentBudget, Budget: domain.BudgetRequest{Income: &income, Expenses: expenses}}, failedResult()).(domain.BudgetResponse)
	require.NotNil(t, withIncome.MonthlySummary)
	assert.Equal(t, domain.MonthlySummary{Total: 75, Projected: 150, Savings: 350}, *withIncome.MonthlySummary)
	assert.Contains(t, withIncome.Answer, "you're spending about $75 so far")
	assert.Equal(t, budgetFallbackTopTip, withIncome.TopTip)
	assert.Equal(t, []domain.Anomaly{}, withIncome.Anomalies)

	noIncome := Normalize(domain.AgentRequest{Kind: domain.AgentBudget, Budget: domain.BudgetRequest{Expenses: expenses}}, failedResult()).(domain.BudgetResponse)
	assert.Equal(t, domain.MonthlySummary{Total: 75, Projected: 150, Savings: -150}, *noIncome.MonthlySummary)
}

func TestSummarizeAvoidsFloatDrift(t *testing.T) {
	t.Parallel()

	got := Summarize(domain.BudgetRequest{Expenses: []domain.Expense{{Amount: 0.1}, {Amount: 0.2}}})
	assert.Equal(t, 0.3, got.Total)
	assert.Equal(t, 0.6, got.Projected)
}

func TestParseFailureIsSchemaComplete(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind domain.AgentKind
		keys []string
	}{
		{domain.AgentHousing, []string{"answer", "tips", "priceRange"}},
		{domain.AgentBudget, []string{"answer", "anomalies", "monthlySummary", "topTip"}},
		{domain.AgentGuide, []string{"answer", "actionSteps", "importantNote", "relatedTopics"}},
		{domain.AgentCareer, []string{"answer", "nextSteps", "companies", "visaNote", "marketOutlook"}},
	}
	for _, tc := range cases {
		resp := Normalize(domain.AgentRequest{Kind: tc.kind}, okResult("Sorry, I can't format that as JSON."))
		obj := requireKeys(t, resp, tc.keys...)
		assert.Equal(t, "Sorry, I can't format that as JSON.", obj["answer"], "kind=%s", tc.kind)
		for _, key := range tc.keys {
			switch v := obj[key].(type) {
			case []interface{}:
				assert.Empty(t, v, "kind=%s key=%s", tc.kind, key)
			case nil:
			case string:
				if key != "answer" {
					assert.Empty(t, v, "kind=%s key=%s", tc.kind, key)
				}
			default:
				t.Fatalf("kind=%s key=%s unexpected value %#v", tc.kind, key, v)
			}
		}
	}
}

func TestCareerRoundTrip(t *testing.T) {
	t.Parallel()

	text := `{"answer":"A","nextSteps":["s1"],"companies":["c1"],"visaNote":"V","marketOutlook":"M"}`
	res := okResult(text)
	got := Normalize(domain.AgentRequest{Kind: domain.AgentCareer}, res)

	assert.Equal(t, domain.CareerResponse{
		Answer:        "A",
		NextSteps:     []string{"s1"},
		Companies:     []string{"c1"},
		VisaNote:      "V",
		MarketOutlook: "M",
		Meta:          res.Meta,
	}, got)
}

func TestFencedJSONIsExtracted(t *testing.T) {
	t.Parallel()

	text := "Here you go:\n```json\n{\"answer\":\"cheap\",\"tips\":[\"t\"],\"priceRange\":{\"low\":400,\"high\":900}}\n```\nGood luck!"
	got := Normalize(domain.AgentRequest{Kind: domain.AgentHousing}, okResult(text)).(domain.HousingResponse)
	assert.Equal(t, "cheap", got.Answer)
	assert.Equal(t, &domain.PriceRange{Low: 400, High: 900}, got.PriceRange)
}

func TestMissingListsDecodeAsEmpty(t *testing.T) {
	t.Parallel()

	got := Normalize(domain.AgentRequest{Kind: domain.AgentGuide}, okResult(`{"answer":"only this"}`)).(domain.GuideResponse)
	assert.Equal(t, []string{}, got.ActionSteps)
	assert.Equal(t, []string{}, got.RelatedTopics)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	text := func(s string) *string { return &s }
	assert.Equal(t, Absent, Classify(domain.AgentHousing, nil))
	assert.Equal(t, Valid, Classify(domain.AgentHousing, text(`{"answer":"x","priceRange":null}`)))
	assert.Equal(t, Invalid, Classify(domain.AgentHousing, text(`{"answer":"x","priceRange":{"low":"cheap"}}`)))
	assert.Equal(t, Invalid, Classify(domain.AgentBudget, text(`{"anomalies":[]}`)))
	assert.Equal(t, Invalid, Classify(domain.AgentCareer, text(`["not","an","object"]`)))
	assert.Equal(t, Invalid, Classify(domain.AgentGuide, text(`not json at all`)))
	assert.Equal(t, Valid, Classify(domain.AgentBuddy, text("hey there")))
	assert.Equal(t, "invalid", Invalid.String())
}

func TestChatPassesTextVerbatim(t *testing.T) {
	t.Parallel()

	res := okResult("  {\"answer\":\"not parsed\"}  ")
	got := Normalize(domain.ChatAgentRequest(domain.ChatRequest{Agent: "housing"}), res)
	assert.Equal(t, domain.ChatResponse{Response: *res.Text, Meta: res.Meta}, got)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, extractJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`sure! {"a":1} hope that helps`))
	assert.Equal(t, "plain", extractJSON("plain"))
}
