package constants

import (
	"strings"
)

type Category string

const (
	Groceries      Category = "Groceries"
	FoodAndDining  Category = "Food & Dining"
	Fuel           Category = "Fuel"
	Transport      Category = "Transport"
	Rent           Category = "Rent"
	BillsUtilities Category = "Bills & Utilities"
	Shopping       Category = "Shopping"
	Entertainment  Category = "Entertainment"
	Health         Category = "Health"
	Other          Category = "Other"
)

var allCategories = []Category{
	Groceries,
	FoodAndDining,
	Fuel,
	Transport,
	Rent,
	BillsUtilities,
	Shopping,
	Entertainment,
	Health,
	Other,
}

// keywordRule maps a lowercase substring to a category. The rule list is
// ordered and evaluated top to bottom; the first hit wins. Reordering the
// list changes behavior, so treat the order as part of the contract.
type keywordRule struct {
	keyword  string
	category Category
}

var keywordRules = []keywordRule{
	{"grocer", Groceries},
	{"food", FoodAndDining},
	{"dinner", FoodAndDining},
	{"lunch", FoodAndDining},
	{"breakfast", FoodAndDining},
	{"cafe", FoodAndDining},
	{"restaurant", FoodAndDining},
	{"fuel", Fuel},
	{"petrol", Fuel},
	{"diesel", Fuel},
	{"uber", Transport},
	{"ola", Transport},
	{"cab", Transport},
	{"bus", Transport},
	{"train", Transport},
	{"metro", Transport},
	{"rent", Rent},
	{"bill", BillsUtilities},
	{"electric", BillsUtilities},
	{"internet", BillsUtilities},
	{"wifi", BillsUtilities},
	{"amazon", Shopping},
	{"flipkart", Shopping},
	{"myntra", Shopping},
	{"shopping", Shopping},
	{"movie", Entertainment},
	{"entertain", Entertainment},
	{"netflix", Entertainment},
	{"spotify", Entertainment},
	{"doctor", Health},
	{"pharma", Health},
	{"medicine", Health},
	{"hospital", Health},
}

// AsStringSlice returns the vocabulary in its canonical order.
func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// MatchKeywords infers a category from free text using the ordered rule
// list. It is total: inputs with no matching keyword map to Other.
func MatchKeywords(text string) Category {
	cat, _ := MatchKeywordsOK(text)
	return cat
}

// MatchKeywordsOK is MatchKeywords plus a flag saying whether any rule hit.
// Query parsing needs the distinction between "Other" and "no signal".
func MatchKeywordsOK(text string) (Category, bool) {
	lc := strings.ToLower(text)
	for _, r := range keywordRules {
		if strings.Contains(lc, r.keyword) {
			return r.category, true
		}
	}
	return Other, false
}

// MatchName finds a vocabulary value mentioned by name inside free text,
// e.g. "how much on entertainment" -> Entertainment. Returns false when no
// category name appears.
func MatchName(text string) (Category, bool) {
	lc := strings.ToLower(text)
	for _, cat := range allCategories {
		if strings.Contains(lc, strings.ToLower(string(cat))) {
			return cat, true
		}
	}
	return Other, false
}

// Canonicalize maps an arbitrary label (typically from a model response)
// onto the closed vocabulary. Unknown labels fall back to Other.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}
	return Other, false
}

// IsValid reports whether the label is exactly one of the vocabulary values.
func IsValid(input string) bool {
	for _, cat := range allCategories {
		if input == string(cat) {
			return true
		}
	}
	return false
}
