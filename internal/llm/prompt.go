package llm

import (
	"strings"

	"github.com/hippocampus-app/hippocampus/constants"
)

// BuildRouterSystemPrompt composes the system message for the text router.
// The model must answer with exactly one of the three reply shapes.
func BuildRouterSystemPrompt(defaultCurrency string) string {
	if defaultCurrency == "" {
		defaultCurrency = constants.DefaultCurrency
	}
	parts := []string{
		"You are a household finance assistant. The user either logs a completed expense or asks for a spending total.",
		"Return ONLY a single JSON object matching one of these shapes:",
		`{"mode":"expense","expense":{"amount":number,"expense_date":"YYYY-MM-DD","category":string,"description":string,"currency":string}}`,
		`{"mode":"query","query":{"start":"YYYY-MM-DD","end":"YYYY-MM-DD","category":string|null,"scope":"me"|"household"}}`,
		`{"needs_clarification":true,"message":string}`,
		"Category must be exactly one of: " + strings.Join(constants.AsStringSlice(), ", ") + ". If uncertain, choose Other.",
		"Use ISO-8601 dates (YYYY-MM-DD). Date ranges are start inclusive, end exclusive.",
		"Currency is a 3-letter ISO 4217 code; default to " + defaultCurrency + " if uncertain.",
		"If the message is too ambiguous to act on, use the needs_clarification shape instead of guessing an amount or date.",
		"Never output anything except the JSON object.",
	}
	return strings.Join(parts, " ")
}

// BuildReceiptSystemPrompt composes the instruction for vision extraction
// of a receipt or payment screenshot.
func BuildReceiptSystemPrompt() string {
	parts := []string{
		"You are a finance assistant. Read the receipt or UPI payment screenshot and return a single JSON object:",
		`{"amount":number,"expense_date":"yyyy-mm-dd","category":string,"description":"3-6 words","raw_text":"all visible text from the image"}`,
		"Category must be exactly one of: " + strings.Join(constants.AsStringSlice(), ", ") + ".",
		"Prefer the merchant or payee name in description.",
		"Always include raw_text with every piece of text you can read on the image.",
		"If unsure, still fill your best guess. Output ONLY JSON.",
	}
	return strings.Join(parts, " ")
}
