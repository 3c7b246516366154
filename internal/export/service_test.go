package export

import (
	"strings"
	"testing"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/entity"
)

func TestBuildCSV_HeaderAndQuoting(t *testing.T) {
	exps := []entity.Expense{
		{
			ExpenseDate: "2026-08-05",
			Amount:      350,
			Currency:    "INR",
			Category:    constants.Groceries,
			Description: "weekly run",
		},
		{
			ExpenseDate: "2026-08-10",
			Amount:      45.5,
			Currency:    "USD",
			Category:    constants.FoodAndDining,
			Description: `dinner at "Ana's"` + "\nwith dessert",
		},
	}

	got := BuildCSV(exps)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != `"date","amount","currency","category","description"` {
		t.Errorf("header = %s", lines[0])
	}
	if lines[1] != `"2026-08-05","350.00","INR","Groceries","weekly run"` {
		t.Errorf("row 1 = %s", lines[1])
	}
	want := `"2026-08-10","45.50","USD","Food & Dining","dinner at ""Ana's"" with dessert"`
	if lines[2] != want {
		t.Errorf("row 2 = %s, want %s", lines[2], want)
	}
}

func TestBuildCSV_EmptyListing(t *testing.T) {
	got := BuildCSV(nil)
	if got != `"date","amount","currency","category","description"`+"\n" {
		t.Errorf("empty export should be header only, got %q", got)
	}
}
