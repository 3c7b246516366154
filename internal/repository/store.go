// Package repository persists households, members, messages and expenses.
// Two drivers are supported: Postgres for real deployments and SQLite for
// single-binary or test setups. Both sit behind the same Store interface.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/entity"
)

// ExpenseFilter narrows sums and listings. Start and End are YYYY-MM-DD
// with Start inclusive and End exclusive. A nil Category means all
// categories; a nil MemberID means the whole household.
type ExpenseFilter struct {
	HouseholdID uuid.UUID
	MemberID    *uuid.UUID
	Start       string
	End         string
	Category    *constants.Category
}

type Store interface {
	// EnsureHousehold returns the household with the given name, creating
	// it on first use.
	EnsureHousehold(ctx context.Context, name string) (entity.Household, error)

	// EnsureMember returns the member with the given display name inside
	// the household, creating it on first use.
	EnsureMember(ctx context.Context, householdID uuid.UUID, displayName string) (entity.Member, error)

	InsertMessage(ctx context.Context, msg entity.Message) error

	InsertExpense(ctx context.Context, exp entity.Expense) error

	// InsertExpenses writes a batch atomically: either every row lands or
	// none do.
	InsertExpenses(ctx context.Context, exps []entity.Expense) error

	// SumExpenses totals amounts matching the filter.
	SumExpenses(ctx context.Context, f ExpenseFilter) (float64, error)

	// SumByCategory totals amounts per category for the filter window,
	// keyed by category name.
	SumByCategory(ctx context.Context, f ExpenseFilter) (map[constants.Category]float64, error)

	// SumByMember totals amounts per member for the filter window, keyed
	// by display name.
	SumByMember(ctx context.Context, f ExpenseFilter) (map[string]float64, error)

	// ListExpenses returns matching rows ordered by expense date ascending.
	ListExpenses(ctx context.Context, f ExpenseFilter) ([]entity.Expense, error)

	Close()
}
