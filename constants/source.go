package constants

// Source tags where an expense record came from. Set once at extraction
// time and never mutated afterwards.
type Source string

const (
	SourceText  Source = "text"
	SourceImage Source = "image"
	SourceSMS   Source = "sms"
)

// Scope says whether an aggregation covers one member or the household.
type Scope string

const (
	ScopeSelf      Scope = "self"
	ScopeHousehold Scope = "household"
)

// DefaultCurrency is the household's local currency used whenever input
// carries no currency signal. Image-sourced expenses always use it.
const DefaultCurrency = "INR"

// USDCurrency is selected when an utterance contains a dollar sign.
const USDCurrency = "USD"
