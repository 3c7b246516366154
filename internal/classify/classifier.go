// Package classify contains the deterministic text classifier. It decides
// whether an utterance logs an expense or asks for a total, and extracts
// structured fields without any network calls. It is the offline fallback
// for the model-backed router and must stay pure.
package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/entity"
)

var (
	// Amount: optional currency symbol, digits, up to two decimals.
	// Thousands separators are stripped before matching.
	amountRe = regexp.MustCompile(`(?:₹|\$)?\s*([0-9]+(?:\.[0-9]{1,2})?)`)

	// Expense intent: an action verb or a currency symbol.
	expenseIntentRe = regexp.MustCompile(`spent|paid|bought|purchase|₹|\$`)
)

// Classifier turns utterances into expense or query candidates.
type Classifier struct {
	defaultCurrency string
}

// Result holds exactly one of the two candidate kinds.
type Result struct {
	Expense *entity.ExpenseCandidate
	Query   *entity.QueryCandidate
}

func NewClassifier(defaultCurrency string) *Classifier {
	if defaultCurrency == "" {
		defaultCurrency = constants.DefaultCurrency
	}
	return &Classifier{defaultCurrency: defaultCurrency}
}

// Classify inspects the utterance and produces either an expense candidate
// or a query candidate. An utterance is an expense only when it shows
// expense intent and a numeric amount; everything else is a query.
func (c *Classifier) Classify(utterance, memberName string, now time.Time) Result {
	lc := strings.ToLower(utterance)

	if expenseIntentRe.MatchString(lc) {
		if amount, ok := extractAmount(utterance); ok {
			exp := c.buildExpense(utterance, lc, amount, now)
			return Result{Expense: exp}
		}
	}
	q := c.buildQuery(lc, memberName, now)
	return Result{Query: q}
}

func (c *Classifier) buildExpense(utterance, lc string, amount float64, now time.Time) *entity.ExpenseCandidate {
	date := now
	if strings.Contains(lc, "yesterday") {
		date = date.AddDate(0, 0, -1)
	}

	currency := c.defaultCurrency
	if strings.Contains(lc, "$") {
		currency = constants.USDCurrency
	}

	return &entity.ExpenseCandidate{
		Amount:      amount,
		Currency:    currency,
		Category:    constants.MatchKeywords(lc),
		ExpenseDate: date.UTC().Format("2006-01-02"),
		Description: strings.TrimSpace(utterance),
		Source:      constants.SourceText,
		RawText:     utterance,
	}
}

func (c *Classifier) buildQuery(lc, memberName string, now time.Time) *entity.QueryCandidate {
	start, end := MonthWindow(now)
	switch {
	case strings.Contains(lc, "last month"):
		start, end = LastMonthWindow(now)
	case strings.Contains(lc, "last week"), strings.Contains(lc, "past week"):
		start, end = LastWeekWindow(now)
	}

	var category *constants.Category
	if cat, ok := constants.MatchName(lc); ok {
		category = &cat
	} else if cat, ok := constants.MatchKeywordsOK(lc); ok {
		category = &cat
	}

	scope := constants.ScopeSelf
	if strings.Contains(lc, "together") || strings.Contains(lc, "we ") {
		scope = constants.ScopeHousehold
	}

	return &entity.QueryCandidate{
		Start:      start,
		End:        end,
		Category:   category,
		Scope:      scope,
		MemberName: memberName,
	}
}

// extractAmount finds the first numeric token in the utterance, tolerating
// comma-grouped thousands and an optional currency prefix.
func extractAmount(utterance string) (float64, bool) {
	stripped := strings.ReplaceAll(utterance, ",", "")
	m := amountRe.FindStringSubmatch(stripped)
	if m == nil {
		return 0, false
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
