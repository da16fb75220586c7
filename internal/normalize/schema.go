package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"nestmind/apps/gateway/internal/domain"
)

// Outcome classifies one gateway result against the agent's output schema.
type Outcome int

const (
	Absent Outcome = iota
	Valid
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var outputSchemas = map[domain.AgentKind]string{
	domain.AgentHousing: `{
  "type": "object",
  "required": ["answer"],
  "properties": {
    "answer": {"type": "string"},
    "tips": {"type": "array", "items": {"type": "string"}},
    "priceRange": {
      "type": ["object", "null"],
      "required": ["low", "high"],
      "properties": {"low": {"type": "number"}, "high": {"type": "number"}}
    }
  }
}`,
	domain.AgentBudget: `{
  "type": "object",
  "required": ["answer"],
  "properties": {
    "answer": {"type": "string"},
    "anomalies": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["item"],
        "properties": {"item": {"type": "string"}, "reason": {"type": "string"}}
      }
    },
    "monthlySummary": {
      "type": ["object", "null"],
      "required": ["total", "projected", "savings"],
      "properties": {
        "total": {"type": "number"},
        "projected": {"type": "number"},
        "savings": {"type": "number"}
      }
    },
    "topTip": {"type": "string"}
  }
}`,
	domain.AgentGuide: `{
  "type": "object",
  "required": ["answer"],
  "properties": {
    "answer": {"type": "string"},
    "actionSteps": {"type": "array", "items": {"type": "string"}},
    "importantNote": {"type": "string"},
    "relatedTopics": {"type": "array", "items": {"type": "string"}}
  }
}`,
	domain.AgentCareer: `{
  "type": "object",
  "required": ["answer"],
  "properties": {
    "answer": {"type": "string"},
    "nextSteps": {"type": "array", "items": {"type": "string"}},
    "companies": {"type": "array", "items": {"type": "string"}},
    "visaNote": {"type": "string"},
    "marketOutlook": {"type": "string"}
  }
}`,
}

var validators = mustCompile(outputSchemas)

func mustCompile(docs map[domain.AgentKind]string) map[domain.AgentKind]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	out := make(map[domain.AgentKind]*jsonschema.Schema, len(docs))
	for kind, raw := range docs {
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			panic(fmt.Sprintf("normalize: invalid %s schema: %v", kind, err))
		}
		name := string(kind) + ".json"
		if err := compiler.AddResource(name, doc); err != nil {
			panic(fmt.Sprintf("normalize: invalid %s schema: %v", kind, err))
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			panic(fmt.Sprintf("normalize: failed to compile %s schema: %v", kind, err))
		}
		out[kind] = schema
	}
	return out
}

// Classify reports how text relates to the output schema of kind. Kinds
// without a schema accept any non-empty text.
func Classify(kind domain.AgentKind, text *string) Outcome {
	outcome, _ := classify(kind, text)
	return outcome
}

// classify also returns the extracted JSON document when the outcome is Valid.
func classify(kind domain.AgentKind, text *string) (Outcome, []byte) {
	if text == nil {
		return Absent, nil
	}
	schema, ok := validators[kind]
	if !ok {
		return Valid, []byte(*text)
	}

	// a bare object may itself contain fenced snippets inside string values
	doc := []byte(strings.TrimSpace(*text))
	var value any
	if err := json.Unmarshal(doc, &value); err != nil {
		doc = []byte(extractJSON(*text))
		if err := json.Unmarshal(doc, &value); err != nil {
			return Invalid, nil
		}
	}
	if err := schema.Validate(value); err != nil {
		return Invalid, nil
	}
	return Valid, doc
}
