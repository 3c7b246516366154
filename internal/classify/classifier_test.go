package classify

import (
	"testing"
	"time"

	"github.com/hippocampus-app/hippocampus/constants"
)

var testNow = time.Date(2026, time.August, 29, 10, 30, 0, 0, time.UTC)

func TestClassify_Expenses(t *testing.T) {
	c := NewClassifier("INR")

	tests := []struct {
		name         string
		utterance    string
		wantAmount   float64
		wantCategory constants.Category
		wantCurrency string
		wantDate     string
	}{
		{
			name:         "currency symbol with comma grouping",
			utterance:    "Spent ₹1,200 on fuel",
			wantAmount:   1200,
			wantCategory: constants.Fuel,
			wantCurrency: "INR",
			wantDate:     "2026-08-29",
		},
		{
			name:         "dollar amount selects USD",
			utterance:    "paid $45.50 for dinner",
			wantAmount:   45.50,
			wantCategory: constants.FoodAndDining,
			wantCurrency: "USD",
			wantDate:     "2026-08-29",
		},
		{
			name:         "yesterday shifts the date back one day",
			utterance:    "bought groceries for 350 yesterday",
			wantAmount:   350,
			wantCategory: constants.Groceries,
			wantCurrency: "INR",
			wantDate:     "2026-08-28",
		},
		{
			name:         "no keyword falls back to Other",
			utterance:    "spent 99 on something odd",
			wantAmount:   99,
			wantCategory: constants.Other,
			wantCurrency: "INR",
			wantDate:     "2026-08-29",
		},
		{
			name:         "first matching rule wins over later ones",
			utterance:    "paid 500 for uber to the restaurant",
			wantAmount:   500,
			wantCategory: constants.FoodAndDining,
			wantCurrency: "INR",
			wantDate:     "2026-08-29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.utterance, "Partner 1", testNow)
			if res.Expense == nil {
				t.Fatalf("Classify(%q) did not produce an expense", tt.utterance)
			}
			exp := res.Expense
			if exp.Amount != tt.wantAmount {
				t.Errorf("amount = %v, want %v", exp.Amount, tt.wantAmount)
			}
			if exp.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", exp.Category, tt.wantCategory)
			}
			if exp.Currency != tt.wantCurrency {
				t.Errorf("currency = %q, want %q", exp.Currency, tt.wantCurrency)
			}
			if exp.ExpenseDate != tt.wantDate {
				t.Errorf("expense_date = %q, want %q", exp.ExpenseDate, tt.wantDate)
			}
			if exp.Source != constants.SourceText {
				t.Errorf("source = %q, want %q", exp.Source, constants.SourceText)
			}
			if exp.RawText != tt.utterance {
				t.Errorf("raw_text = %q, want original utterance", exp.RawText)
			}
		})
	}
}

func TestClassify_Queries(t *testing.T) {
	c := NewClassifier("INR")

	tests := []struct {
		name         string
		utterance    string
		wantStart    string
		wantEnd      string
		wantCategory *constants.Category
		wantScope    constants.Scope
	}{
		{
			name:      "no time phrase defaults to current month",
			utterance: "how much did I spend on entertainment?",
			wantStart: "2026-08-01",
			wantEnd:   "2026-09-01",
			wantCategory: func() *constants.Category {
				c := constants.Entertainment
				return &c
			}(),
			wantScope: constants.ScopeSelf,
		},
		{
			name:      "last month window",
			utterance: "total for last month",
			wantStart: "2026-07-01",
			wantEnd:   "2026-08-01",
			wantScope: constants.ScopeSelf,
		},
		{
			name:      "past week window",
			utterance: "what did we buy in the past week",
			wantStart: "2026-08-22",
			wantEnd:   "2026-08-29",
			wantScope: constants.ScopeHousehold,
		},
		{
			name:      "together marks household scope",
			utterance: "how much together on groceries",
			wantStart: "2026-08-01",
			wantEnd:   "2026-09-01",
			wantCategory: func() *constants.Category {
				c := constants.Groceries
				return &c
			}(),
			wantScope: constants.ScopeHousehold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.utterance, "Partner 2", testNow)
			if res.Query == nil {
				t.Fatalf("Classify(%q) did not produce a query", tt.utterance)
			}
			q := res.Query
			if q.Start != tt.wantStart || q.End != tt.wantEnd {
				t.Errorf("window = [%s, %s), want [%s, %s)", q.Start, q.End, tt.wantStart, tt.wantEnd)
			}
			if tt.wantCategory == nil && q.Category != nil {
				t.Errorf("category = %q, want no filter", *q.Category)
			}
			if tt.wantCategory != nil && (q.Category == nil || *q.Category != *tt.wantCategory) {
				t.Errorf("category = %v, want %q", q.Category, *tt.wantCategory)
			}
			if q.Scope != tt.wantScope {
				t.Errorf("scope = %q, want %q", q.Scope, tt.wantScope)
			}
			if q.MemberName != "Partner 2" {
				t.Errorf("member_name = %q, want acting member", q.MemberName)
			}
		})
	}
}

func TestClassify_NoAmountIsQuery(t *testing.T) {
	c := NewClassifier("INR")
	res := c.Classify("I spent a lot on groceries", "Partner 1", testNow)
	if res.Expense != nil {
		t.Fatalf("utterance without a numeric token must not become an expense")
	}
	if res.Query == nil {
		t.Fatalf("expected a query candidate")
	}
}
