// Package normalize turns a gateway result into the response shape of an agent.
// Every path yields a complete response: callers never branch on shape.
package normalize

import (
	"encoding/json"

	"nestmind/apps/gateway/internal/domain"
)

// Normalize maps res onto the response for req. It never fails; output that
// does not fit the agent's schema degrades to the raw text in the answer field.
func Normalize(req domain.AgentRequest, res domain.GatewayResult) domain.Response {
	out, _ := Result(req, res)
	return out
}

// Result is Normalize that also reports which of the three paths was taken.
func Result(req domain.AgentRequest, res domain.GatewayResult) (domain.Response, Outcome) {
	if !req.Structured() {
		if res.Failed() {
			return domain.ChatResponse{Response: ChatFallbackText, Meta: res.Meta}, Absent
		}
		return domain.ChatResponse{Response: *res.Text, Meta: res.Meta}, Valid
	}

	outcome, doc := classify(req.Kind, res.Text)
	switch outcome {
	case Absent:
		return fallback(req, res.Meta), Absent
	case Valid:
		if out, ok := decode(req.Kind, doc, res.Meta); ok {
			return out, Valid
		}
	}
	return degraded(req.Kind, *res.Text, res.Meta), Invalid
}

func fallback(req domain.AgentRequest, meta domain.Meta) domain.Response {
	switch req.Kind {
	case domain.AgentHousing:
		return housingFallback(meta)
	case domain.AgentBudget:
		return budgetFallback(req.Budget, meta)
	case domain.AgentGuide:
		return guideFallback(meta)
	default:
		return careerFallback(meta)
	}
}

func decode(kind domain.AgentKind, doc []byte, meta domain.Meta) (domain.Response, bool) {
	switch kind {
	case domain.AgentHousing:
		var out domain.HousingResponse
		if err := json.Unmarshal(doc, &out); err != nil {
			return nil, false
		}
		out.Tips = nonNil(out.Tips)
		out.Meta = meta
		return out, true
	case domain.AgentBudget:
		var out domain.BudgetResponse
		if err := json.Unmarshal(doc, &out); err != nil {
			return nil, false
		}
		if out.Anomalies == nil {
			out.Anomalies = []domain.Anomaly{}
		}
		out.Meta = meta
		return out, true
	case domain.AgentGuide:
		var out domain.GuideResponse
		if err := json.Unmarshal(doc, &out); err != nil {
			return nil, false
		}
		out.ActionSteps = nonNil(out.ActionSteps)
		out.RelatedTopics = nonNil(out.RelatedTopics)
		out.Meta = meta
		return out, true
	default:
		var out domain.CareerResponse
		if err := json.Unmarshal(doc, &out); err != nil {
			return nil, false
		}
		out.NextSteps = nonNil(out.NextSteps)
		out.Companies = nonNil(out.Companies)
		out.Meta = meta
		return out, true
	}
}

func degraded(kind domain.AgentKind, raw string, meta domain.Meta) domain.Response {
	switch kind {
	case domain.AgentHousing:
		return domain.HousingResponse{Answer: raw, Tips: []string{}, Meta: meta}
	case domain.AgentBudget:
		return domain.BudgetResponse{Answer: raw, Anomalies: []domain.Anomaly{}, Meta: meta}
	case domain.AgentGuide:
		return domain.GuideResponse{Answer: raw, ActionSteps: []string{}, RelatedTopics: []string{}, Meta: meta}
	default:
		return domain.CareerResponse{Answer: raw, NextSteps: []string{}, Companies: []string{}, Meta: meta}
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
