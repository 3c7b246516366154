package repository

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/entity"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	s, err := openSQLite(context.Background(), ":memory:", slog.Default())
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func seedExpense(memberID uuid.UUID, householdID uuid.UUID, amount float64, cat constants.Category, date string) entity.Expense {
	return entity.Expense{
		ID:          uuid.New(),
		HouseholdID: householdID,
		MemberID:    memberID,
		Amount:      amount,
		Currency:    "INR",
		Category:    cat,
		ExpenseDate: date,
		Source:      constants.SourceText,
	}
}

func TestEnsureHouseholdAndMemberAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h1, err := s.EnsureHousehold(ctx, "home-001")
	if err != nil {
		t.Fatalf("EnsureHousehold: %v", err)
	}
	h2, err := s.EnsureHousehold(ctx, "home-001")
	if err != nil {
		t.Fatalf("EnsureHousehold second call: %v", err)
	}
	if h1.ID != h2.ID {
		t.Errorf("household ids differ across calls: %s vs %s", h1.ID, h2.ID)
	}

	m1, err := s.EnsureMember(ctx, h1.ID, "Partner 1")
	if err != nil {
		t.Fatalf("EnsureMember: %v", err)
	}
	m2, err := s.EnsureMember(ctx, h1.ID, "Partner 1")
	if err != nil {
		t.Fatalf("EnsureMember second call: %v", err)
	}
	if m1.ID != m2.ID {
		t.Errorf("member ids differ across calls: %s vs %s", m1.ID, m2.ID)
	}

	other, err := s.EnsureMember(ctx, h1.ID, "Partner 2")
	if err != nil {
		t.Fatalf("EnsureMember other name: %v", err)
	}
	if other.ID == m1.ID {
		t.Errorf("distinct display names should yield distinct members")
	}
}

func TestSumAndListWithFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.EnsureHousehold(ctx, "home-001")
	if err != nil {
		t.Fatalf("EnsureHousehold: %v", err)
	}
	alice, _ := s.EnsureMember(ctx, h.ID, "Partner 1")
	bob, _ := s.EnsureMember(ctx, h.ID, "Partner 2")

	exps := []entity.Expense{
		seedExpense(alice.ID, h.ID, 350, constants.Groceries, "2026-08-05"),
		seedExpense(alice.ID, h.ID, 1200, constants.Fuel, "2026-08-10"),
		seedExpense(bob.ID, h.ID, 500, constants.Groceries, "2026-08-20"),
		seedExpense(bob.ID, h.ID, 999, constants.Shopping, "2026-07-15"),
	}
	if err := s.InsertExpenses(ctx, exps); err != nil {
		t.Fatalf("InsertExpenses: %v", err)
	}

	august := ExpenseFilter{HouseholdID: h.ID, Start: "2026-08-01", End: "2026-09-01"}

	total, err := s.SumExpenses(ctx, august)
	if err != nil {
		t.Fatalf("SumExpenses: %v", err)
	}
	if total != 2050 {
		t.Errorf("household august total = %v, want 2050", total)
	}

	mine := august
	mine.MemberID = &alice.ID
	total, err = s.SumExpenses(ctx, mine)
	if err != nil {
		t.Fatalf("SumExpenses member filter: %v", err)
	}
	if total != 1550 {
		t.Errorf("member total = %v, want 1550", total)
	}

	groceries := august
	cat := constants.Groceries
	groceries.Category = &cat
	total, err = s.SumExpenses(ctx, groceries)
	if err != nil {
		t.Fatalf("SumExpenses category filter: %v", err)
	}
	if total != 850 {
		t.Errorf("groceries total = %v, want 850", total)
	}

	byCat, err := s.SumByCategory(ctx, august)
	if err != nil {
		t.Fatalf("SumByCategory: %v", err)
	}
	if byCat[constants.Groceries] != 850 || byCat[constants.Fuel] != 1200 {
		t.Errorf("category breakdown = %v", byCat)
	}
	if _, present := byCat[constants.Shopping]; present {
		t.Errorf("july row leaked into august breakdown")
	}

	byMember, err := s.SumByMember(ctx, august)
	if err != nil {
		t.Fatalf("SumByMember: %v", err)
	}
	if byMember["Partner 1"] != 1550 || byMember["Partner 2"] != 500 {
		t.Errorf("member breakdown = %v", byMember)
	}

	listed, err := s.ListExpenses(ctx, august)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("listed %d expenses, want 3", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i-1].ExpenseDate > listed[i].ExpenseDate {
			t.Errorf("listing not ordered by date: %s before %s",
				listed[i-1].ExpenseDate, listed[i].ExpenseDate)
		}
	}
}

func TestWindowEndIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, _ := s.EnsureHousehold(ctx, "home-001")
	m, _ := s.EnsureMember(ctx, h.ID, "Partner 1")

	if err := s.InsertExpense(ctx, seedExpense(m.ID, h.ID, 100, constants.Other, "2026-09-01")); err != nil {
		t.Fatalf("InsertExpense: %v", err)
	}

	total, err := s.SumExpenses(ctx, ExpenseFilter{HouseholdID: h.ID, Start: "2026-08-01", End: "2026-09-01"})
	if err != nil {
		t.Fatalf("SumExpenses: %v", err)
	}
	if total != 0 {
		t.Errorf("expense on the end date counted, want excluded")
	}
}

func TestInsertMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, _ := s.EnsureHousehold(ctx, "home-001")
	m, _ := s.EnsureMember(ctx, h.ID, "Partner 1")

	msg := entity.Message{
		ID:          uuid.New(),
		HouseholdID: h.ID,
		MemberID:    m.ID,
		Role:        "user",
		Content:     "Spent 350 on groceries",
	}
	if err := s.InsertMessage(ctx, msg); err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
}
