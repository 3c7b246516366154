package llm

import (
	"github.com/hippocampus-app/hippocampus/constants"
)

// BuildRouteJSONSchema returns the JSON Schema (draft 2020-12 subset, as a
// generic map) that a router reply must match: exactly one of the expense,
// query or clarification shapes. It is passed to the model as a structured
// output constraint and also used locally to validate the reply.
func BuildRouteJSONSchema() map[string]any {
	return map[string]any{
		"oneOf": []any{
			expenseShape(),
			queryShape(),
			clarificationShape(),
		},
	}
}

// BuildReceiptSeedJSONSchema returns the deliberately lenient schema for
// vision extraction. The repair heuristics fix what the model gets wrong,
// so only types are constrained here, not presence.
func BuildReceiptSeedJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           expenseSeedProps(),
	}
}

func expenseShape() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"mode", "expense"},
		"properties": map[string]any{
			"mode": map[string]any{"const": "expense"},
			"expense": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"amount", "expense_date", "category", "description"},
				"properties":           expenseSeedProps(),
			},
		},
	}
}

func queryShape() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"mode", "query"},
		"properties": map[string]any{
			"mode": map[string]any{"const": "query"},
			"query": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"start", "end", "category", "scope"},
				"properties": map[string]any{
					"start":    dateProp(),
					"end":      dateProp(),
					"category": map[string]any{"type": []any{"string", "null"}},
					"scope":    map[string]any{"enum": []any{"me", "household"}},
				},
			},
		},
	}
}

func clarificationShape() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"needs_clarification", "message"},
		"properties": map[string]any{
			"needs_clarification": map[string]any{"const": true},
			"message":             map[string]any{"type": "string", "minLength": 1},
		},
	}
}

func expenseSeedProps() map[string]any {
	return map[string]any{
		"amount":       map[string]any{"type": "number"},
		"expense_date": dateProp(),
		"category": map[string]any{
			"type": "string",
			"enum": constants.AsStringSlice(),
		},
		"description": map[string]any{"type": "string"},
		"currency":    map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"raw_text":    map[string]any{"type": "string"},
	}
}

func dateProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
}
