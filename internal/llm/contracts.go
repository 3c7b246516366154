// Package llm defines the model-provider port: the wire shapes a completion
// model is asked to produce, strict decoding of its replies, and the
// interfaces the rest of the system depends on. Providers live in
// subpackages; nothing here performs repairs or defaulting.
package llm

import (
	"context"
	"errors"
)

// ExpenseSeed is the provisional expense shape a model returns. It is a
// seed, not a record: fields may be missing or wrong and the repair and
// normalization layers decide what survives.
type ExpenseSeed struct {
	Amount      float64 `json:"amount"`
	ExpenseDate string  `json:"expense_date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Currency    string  `json:"currency,omitempty"`
	RawText     string  `json:"raw_text,omitempty"`
}

// QuerySeed is the provisional aggregation shape a model returns.
// Scope uses the wire vocabulary "me" | "household".
type QuerySeed struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Category *string `json:"category"`
	Scope    string  `json:"scope"`
}

// OutcomeKind tags the three reply shapes a router model may produce.
type OutcomeKind string

const (
	OutcomeExpense       OutcomeKind = "expense"
	OutcomeQuery         OutcomeKind = "query"
	OutcomeClarification OutcomeKind = "clarification"
)

// Outcome is the decoded router reply. Exactly one of Expense, Query or
// Clarification is populated, matching Kind.
type Outcome struct {
	Kind          OutcomeKind
	Expense       *ExpenseSeed
	Query         *QuerySeed
	Clarification string
}

// ErrBadShape means the model reply parsed as JSON but did not match any of
// the three allowed shapes. Callers route this to a clarification reply
// instead of trusting partial fields.
var ErrBadShape = errors.New("model reply does not match any allowed shape")

// IsBadShape reports whether err is, or wraps, ErrBadShape.
func IsBadShape(err error) bool {
	return errors.Is(err, ErrBadShape)
}

// ErrUpstream means the provider call itself failed, transport error, non-2xx
// status or an unusable response envelope, before any reply shape could be
// judged. Callers surface the text to the user rather than hiding it behind
// a generic failure notice.
var ErrUpstream = errors.New("model provider unavailable")

// IsUpstream reports whether err is, or wraps, ErrUpstream.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// Router classifies a text utterance via an external model.
type Router interface {
	Route(ctx context.Context, utterance, memberName string) (Outcome, error)
}

// ReceiptExtractor produces a best-effort expense seed from a receipt or
// payment screenshot. The seed is untrusted and goes through repair and
// normalization before anything is persisted.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte) (ExpenseSeed, error)
}
