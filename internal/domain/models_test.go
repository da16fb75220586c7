package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalTextAcceptsLooseJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want OptionalText
	}{
		{`{"budget":"  900 "}`, OptionalText{Value: "  900 ", Set: true}},
		{`{"budget":1200.5}`, OptionalText{Value: "1200.5", Set: true}},
		{`{"budget":true}`, OptionalText{Value: "true", Set: true}},
		{`{"budget":null}`, OptionalText{}},
		{`{"budget":"   "}`, OptionalText{}},
		{`{}`, OptionalText{}},
	}
	for _, tc := range cases {
		var req HousingRequest
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &req), tc.raw)
		assert.Equal(t, tc.want, req.Budget, tc.raw)
	}
}

func TestOptionalTextOrAndMarshal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not specified", OptionalText{}.Or("not specified"))
	assert.Equal(t, "Austin", Text("Austin").Or("not specified"))

	out, err := json.Marshal(GuideRequest{University: Text("UCLA")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":null,"university":"UCLA","studentCountry":null}`, string(out))
}

func TestParseAgentKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AgentCareer, ParseAgentKind(" Career "))
	assert.Equal(t, AgentGeneral, ParseAgentKind("horoscope"))
	assert.Equal(t, AgentGeneral, ParseAgentKind(""))
	assert.True(t, AgentFood.Known())
	assert.False(t, AgentKind("horoscope").Known())
	assert.Len(t, AgentKinds(), 8)
}

func TestStructuredDependsOnMode(t *testing.T) {
	t.Parallel()

	assert.True(t, AgentRequest{Kind: AgentHousing}.Structured())
	assert.False(t, AgentRequest{Kind: AgentBuddy}.Structured())
	assert.False(t, ChatAgentRequest(ChatRequest{Agent: "housing"}).Structured())
	assert.Equal(t, AgentHousing, ChatAgentRequest(ChatRequest{Agent: "housing"}).Kind)
}

func TestCanonicalFoldsLegacyShape(t *testing.T) {
	t.Parallel()

	var req ChatRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"messages":[{"role":"assistant","content":"hey"},{"role":"user","content":"rent help?"}],
		"userProfile":{"name":"Ana","year":2}
	}`), &req))

	got := req.Canonical()
	assert.Equal(t, "rent help?", got.Query.Value)
	assert.Equal(t, []ConversationTurn{{Role: "assistant", Content: "hey"}}, got.History)
	assert.Equal(t, "Ana", got.Profile.Name.Value)
	assert.Equal(t, "2", got.Profile.Year.Value)
	assert.Nil(t, got.Messages)
	assert.Nil(t, got.UserProfile)
}

func TestCanonicalKeepsExplicitQuery(t *testing.T) {
	t.Parallel()

	req := ChatRequest{
		Query:   Text("new question"),
		History: []ConversationTurn{{Role: "user", Content: "old question"}},
	}
	got := req.Canonical()
	assert.Equal(t, "new question", got.Query.Value)
	assert.Len(t, got.History, 1)
}

func TestGatewayResultFailed(t *testing.T) {
	t.Parallel()

	text := "ok"
	assert.False(t, GatewayResult{Text: &text, Meta: Meta{Source: SourceModel}}.Failed())
	assert.True(t, GatewayResult{Meta: Meta{Source: SourceError, Error: "x"}}.Failed())
}

func TestTextKeepsCallerValue(t *testing.T) {
	t.Parallel()

	got := Text("  where can I\nfind cheap rent?  ")
	assert.True(t, got.Set)
	assert.Equal(t, "  where can I\nfind cheap rent?  ", got.Value)
	assert.False(t, Text(" \t ").Set)
}

func TestChatAcceptsAgentKindKey(t *testing.T) {
	t.Parallel()

	var req ChatRequest
	require.NoError(t, json.Unmarshal([]byte(`{"query":"OPT timeline?","agentKind":"campus"}`), &req))
	assert.Equal(t, AgentCampus, ChatAgentRequest(req).Kind)
	assert.Equal(t, "campus", req.Canonical().Agent)

	require.NoError(t, json.Unmarshal([]byte(`{"agent":"food","agentKind":"campus"}`), &req))
	assert.Equal(t, AgentFood, ChatAgentRequest(req).Kind)
}

func TestBudgetAcceptsNumericStrings(t *testing.T) {
	t.Parallel()

	var req BudgetRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"query":"ok?",
		"income":" 1500 ",
		"expenses":[{"item":"rent","amount":"600.5"},{"item":"coffee","category":"food","amount":40},{"item":"gift","amount":null}]
	}`), &req))
	require.NotNil(t, req.Income)
	assert.Equal(t, 1500.0, *req.Income)
	assert.Equal(t, "ok?", req.Query.Value)
	require.Len(t, req.Expenses, 3)
	assert.Equal(t, 600.5, req.Expenses[0].Amount)
	assert.Equal(t, "food", req.Expenses[1].Category.Value)
	assert.Equal(t, 40.0, req.Expenses[1].Amount)
	assert.Equal(t, 0.0, req.Expenses[2].Amount)

	var blank BudgetRequest
	require.NoError(t, json.Unmarshal([]byte(`{"income":""}`), &blank))
	assert.Nil(t, blank.Income)
	require.NoError(t, json.Unmarshal([]byte(`{"income":null}`), &blank))
	assert.Nil(t, blank.Income)

	var bad BudgetRequest
	err := json.Unmarshal([]byte(`{"income":"lots"}`), &bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income")
	assert.Error(t, json.Unmarshal([]byte(`{"expenses":[{"amount":true}]}`), &bad))
}
