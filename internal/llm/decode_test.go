package llm

import (
	"errors"
	"testing"
)

func TestDecodeOutcome_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want OutcomeKind
	}{
		{
			name: "expense shape",
			body: `{"mode":"expense","expense":{"amount":350,"expense_date":"2026-08-29","category":"Groceries","description":"weekly run"}}`,
			want: OutcomeExpense,
		},
		{
			name: "query shape",
			body: `{"mode":"query","query":{"start":"2026-08-01","end":"2026-09-01","category":null,"scope":"me"}}`,
			want: OutcomeQuery,
		},
		{
			name: "clarification shape",
			body: `{"needs_clarification":true,"message":"How much did you spend?"}`,
			want: OutcomeClarification,
		},
		{
			name: "fenced expense",
			body: "```json\n{\"mode\":\"expense\",\"expense\":{\"amount\":99,\"expense_date\":\"2026-08-29\",\"category\":\"Fuel\",\"description\":\"petrol\"}}\n```",
			want: OutcomeExpense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := DecodeOutcome([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeOutcome: %v", err)
			}
			if out.Kind != tt.want {
				t.Errorf("kind = %s, want %s", out.Kind, tt.want)
			}
		})
	}
}

func TestDecodeOutcome_BadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "sorry, I cannot help with that"},
		{"wrong mode", `{"mode":"transfer","expense":{"amount":1,"expense_date":"2026-08-29","category":"Other","description":""}}`},
		{"expense without payload", `{"mode":"expense"}`},
		{"query with bad scope", `{"mode":"query","query":{"start":"2026-08-01","end":"2026-09-01","category":null,"scope":"everyone"}}`},
		{"query with bad date", `{"mode":"query","query":{"start":"01/08/2026","end":"2026-09-01","category":null,"scope":"me"}}`},
		{"expense with unknown category", `{"mode":"expense","expense":{"amount":1,"expense_date":"2026-08-29","category":"Gadgets","description":""}}`},
		{"extra top level field", `{"mode":"expense","expense":{"amount":1,"expense_date":"2026-08-29","category":"Other","description":""},"debug":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOutcome([]byte(tt.body))
			if !errors.Is(err, ErrBadShape) {
				t.Errorf("err = %v, want ErrBadShape", err)
			}
		})
	}
}

func TestDecodeSeed_Lenient(t *testing.T) {
	seed := DecodeSeed([]byte(`{"amount":450,"expense_date":"2026-08-29","category":"Groceries","description":"market","raw_text":"₹450"}`))
	if seed.Amount != 450 || seed.RawText != "₹450" {
		t.Errorf("seed = %+v", seed)
	}

	empty := DecodeSeed([]byte("the image is too blurry to read"))
	if empty != (ExpenseSeed{}) {
		t.Errorf("unparsable body should give an empty seed, got %+v", empty)
	}
}

func TestStripFences(t *testing.T) {
	got := string(StripFences([]byte("Here you go:\n```json\n{\"a\":1}\n```\nthanks")))
	if got != `{"a":1}` {
		t.Errorf("StripFences = %q", got)
	}
}
