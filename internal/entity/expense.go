package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/hippocampus-app/hippocampus/constants"
)

// Household groups members and their expenses.
type Household struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is one person in a household, identified by display name.
type Member struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID uuid.UUID `json:"household_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is one chat turn, kept as an audit trail of what the user said.
type Message struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID uuid.UUID `json:"household_id"`
	MemberID    uuid.UUID `json:"member_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expense is a persisted, validated expense row.
type Expense struct {
	ID          uuid.UUID          `json:"id"`
	HouseholdID uuid.UUID          `json:"household_id"`
	MemberID    uuid.UUID          `json:"member_id"`
	Amount      float64            `json:"amount"`
	Currency    string             `json:"currency"`
	Category    constants.Category `json:"category"`
	ExpenseDate string             `json:"expense_date"` // YYYY-MM-DD, never a timestamp
	Description string             `json:"description"`
	Source      constants.Source   `json:"source"`
	RawText     string             `json:"raw_text,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ExpenseCandidate is a provisional expense produced by an extraction path.
// It is mutated only by the normalizer; once persisted or rejected it is
// never touched again.
type ExpenseCandidate struct {
	Amount      float64            `json:"amount"`
	Currency    string             `json:"currency"`
	Category    constants.Category `json:"category"`
	ExpenseDate string             `json:"expense_date"`
	Description string             `json:"description"`
	Source      constants.Source   `json:"source"`
	RawText     string             `json:"raw_text,omitempty"`
}
