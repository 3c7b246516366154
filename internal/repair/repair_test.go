package repair

import (
	"testing"
	"time"

	"github.com/hippocampus-app/hippocampus/internal/llm"
)

var testNow = time.Date(2026, time.August, 29, 18, 0, 0, 0, time.UTC)

func TestRepair_Amount(t *testing.T) {
	tests := []struct {
		name       string
		seed       llm.ExpenseSeed
		wantAmount float64
	}{
		{
			name: "zero amount recovered from rupee token",
			seed: llm.ExpenseSeed{
				Amount:      0,
				ExpenseDate: "2026-08-29",
				RawText:     "Payment successful\n₹450.00\nPaid to Ratnadeep",
			},
			wantAmount: 450.00,
		},
		{
			name: "Rs prefix with comma grouping",
			seed: llm.ExpenseSeed{
				Amount:      0,
				ExpenseDate: "2026-08-29",
				RawText:     "Total Rs. 1,250.50 paid",
			},
			wantAmount: 1250.50,
		},
		{
			name: "positive seed amount untouched",
			seed: llm.ExpenseSeed{
				Amount:      99,
				ExpenseDate: "2026-08-29",
				RawText:     "₹450.00",
			},
			wantAmount: 99,
		},
		{
			name: "no token leaves amount at zero",
			seed: llm.ExpenseSeed{
				Amount:      0,
				ExpenseDate: "2026-08-29",
				RawText:     "no numbers here",
			},
			wantAmount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.seed, testNow)
			if got.Amount != tt.wantAmount {
				t.Errorf("amount = %v, want %v", got.Amount, tt.wantAmount)
			}
		})
	}
}

func TestRepair_Date(t *testing.T) {
	tests := []struct {
		name     string
		seedDate string
		rawText  string
		wantDate string
	}{
		{
			name:     "long form month name",
			seedDate: "29/08/25",
			rawText:  "Paid on 29 August 2025 at 10:14",
			wantDate: "2025-08-29",
		},
		{
			name:     "three letter month abbreviation",
			seedDate: "",
			rawText:  "5 Sep 2025",
			wantDate: "2025-09-05",
		},
		{
			name:     "dd/mm/yyyy",
			seedDate: "not-a-date",
			rawText:  "Date: 29/08/2025",
			wantDate: "2025-08-29",
		},
		{
			name:     "dd-mm-yyyy",
			seedDate: "",
			rawText:  "29-08-2025",
			wantDate: "2025-08-29",
		},
		{
			name:     "bare iso date in transcript",
			seedDate: "",
			rawText:  "ref 2025-08-29 txn",
			wantDate: "2025-08-29",
		},
		{
			name:     "valid seed date kept",
			seedDate: "2025-01-15",
			rawText:  "29 August 2025",
			wantDate: "2025-01-15",
		},
		{
			name:     "timestamp seed trimmed to date",
			seedDate: "2025-01-15T00:00:00Z",
			rawText:  "",
			wantDate: "2025-01-15",
		},
		{
			name:     "iso shaped token with impossible month defaults to today",
			seedDate: "",
			rawText:  "ref 2025-13-40 txn",
			wantDate: "2026-08-29",
		},
		{
			name:     "nothing usable defaults to today",
			seedDate: "",
			rawText:  "no dates at all",
			wantDate: "2026-08-29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(llm.ExpenseSeed{ExpenseDate: tt.seedDate, Amount: 1, RawText: tt.rawText}, testNow)
			if got.ExpenseDate != tt.wantDate {
				t.Errorf("expense_date = %q, want %q", got.ExpenseDate, tt.wantDate)
			}
		})
	}
}

func TestRepair_Category(t *testing.T) {
	tests := []struct {
		name     string
		seedCat  string
		rawText  string
		wantCat  string
	}{
		{"other rescanned to food", "Other", "Blue Tokai Cafe", "Food & Dining"},
		{"other rescanned to fuel", "Other", "HP Petrol Pump", "Fuel"},
		{"other rescanned to transport", "Other", "Uber India", "Transport"},
		{"other rescanned to shopping", "Other", "Amazon Pay", "Shopping"},
		{"other rescanned to bills", "Other", "Electric bill August", "Bills & Utilities"},
		{"other rescanned to entertainment", "Other", "Netflix subscription", "Entertainment"},
		{"other rescanned to health", "Other", "Apollo Pharmacy medicine", "Health"},
		{"empty behaves like other", "", "paid at restaurant", "Food & Dining"},
		{"seed category kept when not other", "Groceries", "Uber India", "Groceries"},
		{"no hint stays other", "Other", "nothing recognizable", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(llm.ExpenseSeed{Category: tt.seedCat, Amount: 1, ExpenseDate: "2026-08-29", RawText: tt.rawText}, testNow)
			if got.Category != tt.wantCat {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCat)
			}
		})
	}
}

func TestRepair_Description(t *testing.T) {
	tests := []struct {
		name     string
		seedDesc string
		rawText  string
		wantDesc string
	}{
		{
			name:     "paid to line captured",
			seedDesc: "",
			rawText:  "₹450\nPaid to Ratnadeep Super Market\nUPI ref 1234",
			wantDesc: "Ratnadeep Super Market",
		},
		{
			name:     "seed description kept",
			seedDesc: "Groceries run",
			rawText:  "Paid to Ratnadeep",
			wantDesc: "Groceries run",
		},
		{
			name:     "placeholder when nothing matches",
			seedDesc: "",
			rawText:  "no payee line",
			wantDesc: "Receipt import",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(llm.ExpenseSeed{Description: tt.seedDesc, Amount: 1, ExpenseDate: "2026-08-29", RawText: tt.rawText}, testNow)
			if got.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestRepair_LongPayeeNameTruncated(t *testing.T) {
	long := "Paid to Aaaaaaaaaabbbbbbbbbbccccccccccddddddddddeeeeeeeeeeffffffffffgggggggggg"
	got := Repair(llm.ExpenseSeed{Amount: 1, ExpenseDate: "2026-08-29", RawText: long}, testNow)
	if n := len([]rune(got.Description)); n > 60 {
		t.Errorf("description length = %d runes, want <= 60", n)
	}
}
