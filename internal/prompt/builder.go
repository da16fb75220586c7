// Package prompt renders the text prompt sent to the model for every agent.
// Rendering is pure: the same request and history always yield the same string.
package prompt

import (
	"strings"

	"nestmind/apps/gateway/internal/domain"
)

const (
	notSpecified    = "not specified"
	notProvided     = "not provided"
	someUniversity  = "a US university"
	anotherCountry  = "another country"
	theStudent      = "the student"
	defaultVisaType = "F1 student visa"
)

// Build renders the prompt for req. history is used verbatim by the
// conversational personas; windowing is the caller's job.
func Build(req domain.AgentRequest, history []domain.ConversationTurn) string {
	if !req.Structured() {
		return chatPrompt(req.Kind, req.Chat, history)
	}
	switch req.Kind {
	case domain.AgentHousing:
		return housingPrompt(req.Housing)
	case domain.AgentBudget:
		return budgetPrompt(req.Budget)
	case domain.AgentGuide:
		return guidePrompt(req.Guide)
	case domain.AgentCareer:
		return careerPrompt(req.Career)
	default:
		return chatPrompt(req.Kind, req.Chat, history)
	}
}

// Transcript renders turns as "role: content" lines, oldest first.
func Transcript(history []domain.ConversationTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, turn.Role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}
