// Package normalize enforces the canonical field set on candidates coming
// out of either extraction path. It completes what can be defaulted
// deterministically, rejects what cannot, and never talks to a model.
package normalize

import (
	"strings"
	"time"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/classify"
	"github.com/hippocampus-app/hippocampus/internal/entity"
	"github.com/hippocampus-app/hippocampus/internal/llm"
)

const dateLayout = "2006-01-02"

// ClarificationError signals that a candidate was too incomplete to act on
// and the user should be asked to confirm or edit. It is an outcome, not a
// fault: callers turn it into a chat reply.
type ClarificationError struct {
	Message string
}

func (e *ClarificationError) Error() string {
	return e.Message
}

// AsClarification returns the clarification message when err is one.
func AsClarification(err error) (string, bool) {
	if ce, ok := err.(*ClarificationError); ok {
		return ce.Message, true
	}
	return "", false
}

const (
	msgMissingAmount = "I couldn't make out the amount. Please confirm or edit the expense, e.g. \"Spent ₹350 on groceries\"."
	msgMissingDate   = "I couldn't make out the date. Please confirm or edit the expense with a date like 2025-08-29."
	msgMissingField  = "I couldn't read enough of that expense. Please confirm or edit the amount, date and category."
)

// Normalizer applies currency, source and description defaults and decides
// whether a candidate is complete enough to persist.
type Normalizer struct {
	defaultCurrency string
}

func New(defaultCurrency string) *Normalizer {
	if defaultCurrency == "" {
		defaultCurrency = constants.DefaultCurrency
	}
	return &Normalizer{defaultCurrency: defaultCurrency}
}

// NormalizeExpense validates and completes an expense candidate. A missing
// amount, date or category is never guessed here; it becomes a
// clarification. Normalizing an already-normalized candidate is a no-op.
func (n *Normalizer) NormalizeExpense(c entity.ExpenseCandidate) (entity.ExpenseCandidate, error) {
	if c.Amount <= 0 {
		return c, &ClarificationError{Message: msgMissingAmount}
	}
	if _, err := time.Parse(dateLayout, c.ExpenseDate); err != nil {
		return c, &ClarificationError{Message: msgMissingDate}
	}
	if c.Category == "" {
		return c, &ClarificationError{Message: msgMissingField}
	}
	if !constants.IsValid(string(c.Category)) {
		cat, _ := constants.Canonicalize(string(c.Category))
		c.Category = cat
	}

	if c.Currency == "" {
		c.Currency = n.defaultCurrency
	}
	c.Currency = strings.ToUpper(c.Currency)
	if c.Source == "" {
		c.Source = constants.SourceText
	}
	if strings.TrimSpace(c.Description) == "" {
		c.Description = c.RawText
	}
	return c, nil
}

// NormalizeQuery completes a query candidate. Queries always succeed: a
// missing category means no filter and scope and window have defaults.
func (n *Normalizer) NormalizeQuery(q entity.QueryCandidate, now time.Time) entity.QueryCandidate {
	if !validDate(q.Start) || !validDate(q.End) {
		q.Start, q.End = classify.MonthWindow(now)
	}
	if q.Scope != constants.ScopeSelf && q.Scope != constants.ScopeHousehold {
		q.Scope = constants.ScopeSelf
	}
	if q.Category != nil {
		if cat, ok := constants.Canonicalize(string(*q.Category)); ok {
			q.Category = &cat
		} else {
			q.Category = nil
		}
	}
	return q
}

// ExpenseFromSeed shapes a model seed into an expense candidate with
// provenance attached. No validation happens here.
func ExpenseFromSeed(seed llm.ExpenseSeed, source constants.Source, rawText string) entity.ExpenseCandidate {
	if rawText == "" {
		rawText = seed.RawText
	}
	return entity.ExpenseCandidate{
		Amount:      seed.Amount,
		Currency:    seed.Currency,
		Category:    constants.Category(seed.Category),
		ExpenseDate: seed.ExpenseDate,
		Description: seed.Description,
		Source:      source,
		RawText:     rawText,
	}
}

// QueryFromSeed shapes a model query seed into a query candidate, mapping
// the wire scope vocabulary onto ours.
func QueryFromSeed(seed llm.QuerySeed, memberName string) entity.QueryCandidate {
	scope := constants.ScopeSelf
	if seed.Scope == "household" {
		scope = constants.ScopeHousehold
	}
	var category *constants.Category
	if seed.Category != nil {
		cat := constants.Category(*seed.Category)
		category = &cat
	}
	return entity.QueryCandidate{
		Start:      seed.Start,
		End:        seed.End,
		Category:   category,
		Scope:      scope,
		MemberName: memberName,
	}
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
