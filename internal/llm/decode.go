package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// routeEnvelope mirrors the three wire shapes for decoding after schema
// validation has passed.
type routeEnvelope struct {
	Mode               string       `json:"mode"`
	Expense            *ExpenseSeed `json:"expense"`
	Query              *QuerySeed   `json:"query"`
	NeedsClarification bool         `json:"needs_clarification"`
	Message            string       `json:"message"`
}

// DecodeOutcome strictly decodes a router reply into the tagged union.
// Replies that are valid JSON but match none of the three shapes yield
// ErrBadShape; fields of a mismatched shape are never partially trusted.
func DecodeOutcome(data []byte) (Outcome, error) {
	data = StripFences(data)
	if err := ValidateJSONAgainstSchema(BuildRouteJSONSchema(), data); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBadShape, err)
	}

	var env routeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBadShape, err)
	}

	switch {
	case env.Mode == "expense" && env.Expense != nil:
		return Outcome{Kind: OutcomeExpense, Expense: env.Expense}, nil
	case env.Mode == "query" && env.Query != nil:
		return Outcome{Kind: OutcomeQuery, Query: env.Query}, nil
	case env.NeedsClarification:
		return Outcome{Kind: OutcomeClarification, Clarification: env.Message}, nil
	}
	return Outcome{}, ErrBadShape
}

// DecodeSeed leniently decodes a vision reply into an expense seed. A body
// that is not parsable JSON yields an empty seed; the repair heuristics and
// the normalizer decide what to do with it.
func DecodeSeed(data []byte) ExpenseSeed {
	data = StripFences(data)
	var seed ExpenseSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return ExpenseSeed{}
	}
	return seed
}

// StripFences removes a markdown code fence around a JSON body and trims to
// the outermost object. Models wrap JSON in ```json fences often enough
// that every provider needs this.
func StripFences(data []byte) []byte {
	text := strings.TrimSpace(string(data))
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return []byte(text)
}
