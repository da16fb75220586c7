package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type APIErrorBody struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type AgentKind string

const (
	AgentBuddy   AgentKind = "buddy"
	AgentHousing AgentKind = "housing"
	AgentBudget  AgentKind = "budget"
	AgentGuide   AgentKind = "guide"
	AgentCampus  AgentKind = "campus"
	AgentCareer  AgentKind = "career"
	AgentFood    AgentKind = "food"
	// AgentGeneral is the conversational persona without a topic restriction.
	AgentGeneral AgentKind = "chat"
)

var agentKinds = []AgentKind{
	AgentBuddy,
	AgentHousing,
	AgentBudget,
	AgentGuide,
	AgentCampus,
	AgentCareer,
	AgentFood,
	AgentGeneral,
}

func AgentKinds() []AgentKind {
	return append([]AgentKind(nil), agentKinds...)
}

// ParseAgentKind maps a free-form identifier onto the closed set. Unknown values
// resolve to AgentGeneral so the endpoint stays available.
func ParseAgentKind(raw string) AgentKind {
	id := AgentKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range agentKinds {
		if kind == id {
			return kind
		}
	}
	return AgentGeneral
}

func (k AgentKind) Known() bool {
	for _, kind := range agentKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Structured reports whether the agent answers with a JSON object rather than free text.
func (k AgentKind) Structured() bool {
	switch k {
	case AgentHousing, AgentBudget, AgentGuide, AgentCareer:
		return true
	default:
		return false
	}
}

// OptionalText is a request field that may be absent. It accepts JSON strings,
// numbers and booleans; null, a missing key and blank strings are all "not set".
type OptionalText struct {
	Value string
	Set   bool
}

// Text wraps v as given. Blank values count as not set.
func Text(v string) OptionalText {
	if strings.TrimSpace(v) == "" {
		return OptionalText{}
	}
	return OptionalText{Value: v, Set: true}
}

func (t OptionalText) Or(placeholder string) string {
	if !t.Set {
		return placeholder
	}
	return t.Value
}

func (t *OptionalText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = OptionalText{}
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*t = Text(v)
	case float64:
		*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*t = Text(strconv.FormatBool(v))
	default:
		*t = Text(string(trimmed))
	}
	return nil
}

func (t OptionalText) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type HousingRequest struct {
	Query      OptionalText `json:"query"`
	University OptionalText `json:"university"`
	Budget     OptionalText `json:"budget"`
}

type Expense struct {
	Item     OptionalText `json:"item"`
	Category OptionalText `json:"category"`
	Amount   float64      `json:"amount"`
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	type plain Expense
	var aux struct {
		plain
		Amount json.RawMessage `json:"amount"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	amount, err := looseNumber("amount", aux.Amount)
	if err != nil {
		return err
	}
	*e = Expense(aux.plain)
	if amount != nil {
		e.Amount = *amount
	}
	return nil
}

type BudgetRequest struct {
	Query    OptionalText `json:"query"`
	Income   *float64     `json:"income"`
	Expenses []Expense    `json:"expenses"`
}

func (b *BudgetRequest) UnmarshalJSON(data []byte) error {
	type plain BudgetRequest
	var aux struct {
		plain
		Income json.RawMessage `json:"income"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	income, err := looseNumber("income", aux.Income)
	if err != nil {
		return err
	}
	*b = BudgetRequest(aux.plain)
	b.Income = income
	return nil
}

// looseNumber accepts a JSON number or a numeric string. Missing, null and
// blank values yield nil.
func looseNumber(field string, raw json.RawMessage) (*float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	switch n := v.(type) {
	case float64:
		return &n, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", field, n)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("%s: expected a number, got %s", field, trimmed)
	}
}

type GuideRequest struct {
	Query          OptionalText `json:"query"`
	University     OptionalText `json:"university"`
	StudentCountry OptionalText `json:"studentCountry"`
}

type CareerRequest struct {
	Query      OptionalText `json:"query"`
	Major      OptionalText `json:"major"`
	Year       OptionalText `json:"year"`
	VisaStatus OptionalText `json:"visaStatus"`
}

type StudentProfile struct {
	Name       OptionalText `json:"name"`
	University OptionalText `json:"university"`
	Country    OptionalText `json:"country"`
	Major      OptionalText `json:"major"`
	Year       OptionalText `json:"year"`
}

type ChatRequest struct {
	Query   OptionalText       `json:"query"`
	Agent   string             `json:"agent"`
	Profile StudentProfile     `json:"profile"`
	History []ConversationTurn `json:"history"`

	// AgentKind is an alternate name for Agent; Agent wins when both are sent.
	AgentKind string `json:"agentKind,omitempty"`

	// Messages and UserProfile accept the older single-persona body shape.
	Messages    []ConversationTurn `json:"messages,omitempty"`
	UserProfile *StudentProfile    `json:"userProfile,omitempty"`
}

// Canonical folds the older messages/userProfile body into History and Profile.
// Without an explicit query, a trailing user turn becomes the question.
func (c ChatRequest) Canonical() ChatRequest {
	out := c
	if strings.TrimSpace(out.Agent) == "" {
		out.Agent = out.AgentKind
	}
	out.AgentKind = ""
	if len(out.History) == 0 && len(out.Messages) > 0 {
		out.History = append([]ConversationTurn(nil), out.Messages...)
	}
	if out.UserProfile != nil && out.Profile == (StudentProfile{}) {
		out.Profile = *out.UserProfile
	}
	out.Messages = nil
	out.UserProfile = nil
	if !out.Query.Set && len(out.History) > 0 {
		last := out.History[len(out.History)-1]
		if strings.EqualFold(last.Role, "user") {
			out.Query = Text(last.Content)
			out.History = out.History[:len(out.History)-1]
		}
	}
	return out
}

// AgentRequest is the tagged union flowing through the pipeline. Conversational
// requests read Chat and pick a persona by Kind; otherwise exactly the field
// matching Kind is read.
type AgentRequest struct {
	Kind           AgentKind
	Conversational bool
	Housing        HousingRequest
	Budget         BudgetRequest
	Guide          GuideRequest
	Career         CareerRequest
	Chat           ChatRequest
}

// ChatAgentRequest wraps a conversational request, resolving its persona.
func ChatAgentRequest(chat ChatRequest) AgentRequest {
	agent := chat.Agent
	if strings.TrimSpace(agent) == "" {
		agent = chat.AgentKind
	}
	return AgentRequest{Kind: ParseAgentKind(agent), Conversational: true, Chat: chat}
}

func (r AgentRequest) Structured() bool {
	return !r.Conversational && r.Kind.Structured()
}

const (
	SourceModel = "model"
	SourceError = "error"
)

type Meta struct {
	DurationMS int64  `json:"durationMs"`
	TokensUsed *int   `json:"tokensUsed,omitempty"`
	Source     string `json:"source"`
	Error      string `json:"error,omitempty"`
}

// GatewayResult carries Text == nil exactly when Meta.Source is SourceError.
type GatewayResult struct {
	Text *string
	Meta Meta
}

func (r GatewayResult) Failed() bool {
	return r.Text == nil
}

type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type HousingResponse struct {
	Answer     string      `json:"answer"`
	Tips       []string    `json:"tips"`
	PriceRange *PriceRange `json:"priceRange"`
	Meta       Meta        `json:"meta"`
}

type Anomaly struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

type MonthlySummary struct {
	Total     float64 `json:"total"`
	Projected float64 `json:"projected"`
	Savings   float64 `json:"savings"`
}

type BudgetResponse struct {
	Answer         string          `json:"answer"`
	Anomalies      []Anomaly       `json:"anomalies"`
	MonthlySummary *MonthlySummary `json:"monthlySummary"`
	TopTip         string          `json:"topTip"`
	Meta           Meta            `json:"meta"`
}

type GuideResponse struct {
	Answer        string   `json:"answer"`
	ActionSteps   []string `json:"actionSteps"`
	ImportantNote string   `json:"importantNote"`
	RelatedTopics []string `json:"relatedTopics"`
	Meta          Meta     `json:"meta"`
}

type CareerResponse struct {
	Answer        string   `json:"answer"`
	NextSteps     []string `json:"nextSteps"`
	Companies     []string `json:"companies"`
	VisaNote      string   `json:"visaNote"`
	MarketOutlook string   `json:"marketOutlook"`
	Meta          Meta     `json:"meta"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Meta     Meta   `json:"meta"`
}

// Response is one of the *Response types above; all of them carry Meta.
type Response interface {
	ResponseMeta() Meta
}

func (r HousingResponse) ResponseMeta() Meta { return r.Meta }
func (r BudgetResponse) ResponseMeta() Meta  { return r.Meta }
func (r GuideResponse) ResponseMeta() Meta   { return r.Meta }
func (r CareerResponse) ResponseMeta() Meta  { return r.Meta }
func (r ChatResponse) ResponseMeta() Meta    { return r.Meta }

const (
	EventAgentRequest  = "agent_request"
	EventAgentResponse = "agent_response"
	EventAgentFallback = "agent_fallback"
	EventHeartbeat     = "heartbeat"
)

// Event is a fire-and-forget telemetry record.
type Event struct {
	Name       string                 `json:"name"`
	At         time.Time              `json:"at"`
	RequestID  string                 `json:"requestId,omitempty"`
	Agent      string                 `json:"agent,omitempty"`
	Source     string                 `json:"source,omitempty"`
	Outcome    string                 `json:"outcome,omitempty"`
	DurationMS int64                  `json:"durationMs,omitempty"`
	Tokens     int                    `json:"tokens,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Attrs      map[string]interface{} `json:"attrs,omitempty"`
}
