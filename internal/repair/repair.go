// Package repair holds the deterministic heuristics that fix up a vision
// model's expense seed using the raw transcript it returned alongside. The
// model's answer is only a starting point: amounts come back as zero, dates
// in local formats, categories as Other. Every repair is a regex scan over
// the transcript; nothing here ever fails, an unrepairable field keeps its
// documented default.
package repair

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hippocampus-app/hippocampus/internal/llm"
)

const dateLayout = "2006-01-02"

// descriptionLimit bounds the payee name captured from the transcript.
const descriptionLimit = 60

var (
	rupeeAmountRe = regexp.MustCompile(`₹\s*([\d,]+(?:\.\d{1,2})?)`)
	rsAmountRe    = regexp.MustCompile(`(?i)\brs\.?\s*([\d,]+(?:\.\d{1,2})?)`)

	longDateRe = regexp.MustCompile(`\b(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4})\b`)
	dmyDateRe  = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})\b`)
	isoDateRe  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	paidToRe = regexp.MustCompile(`(?im)paid\s+to\s+(.+)$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// categoryHint is one transcript keyword family. Evaluated in order, first
// hit wins, mirroring the text classifier's rule-list contract.
type categoryHint struct {
	re       *regexp.Regexp
	category string
}

var categoryHints = []categoryHint{
	{regexp.MustCompile(`(?i)\b(bakery|baking|cafe|restaurant|hotel|food|eatery)\b`), "Food & Dining"},
	{regexp.MustCompile(`(?i)\b(petrol|diesel|fuel)\b`), "Fuel"},
	{regexp.MustCompile(`(?i)\b(uber|ola|cab|bus|train|metro|transport)\b`), "Transport"},
	{regexp.MustCompile(`(?i)\b(amazon|flipkart|myntra|shopping)\b`), "Shopping"},
	{regexp.MustCompile(`(?i)\b(rent)\b`), "Rent"},
	{regexp.MustCompile(`(?i)\b(electric|internet|wifi|bills?)\b`), "Bills & Utilities"},
	{regexp.MustCompile(`(?i)\b(netflix|spotify|prime|entertainment)\b`), "Entertainment"},
	{regexp.MustCompile(`(?i)\b(hospital|medicine|pharma|health)\b`), "Health"},
}

// Repair fills in or corrects seed fields from the transcript. Pure: same
// seed and clock in, same seed out.
func Repair(seed llm.ExpenseSeed, now time.Time) llm.ExpenseSeed {
	transcript := seed.RawText

	if seed.Amount <= 0 {
		if amount, ok := amountFromTranscript(transcript); ok {
			seed.Amount = amount
		}
	}

	seed.ExpenseDate = repairDate(seed.ExpenseDate, transcript, now)

	if seed.Category == "" || seed.Category == "Other" {
		if cat, ok := categoryFromTranscript(transcript); ok {
			seed.Category = cat
		} else if seed.Category == "" {
			seed.Category = "Other"
		}
	}

	if strings.TrimSpace(seed.Description) == "" {
		seed.Description = descriptionFromTranscript(transcript)
	}

	return seed
}

func amountFromTranscript(transcript string) (float64, bool) {
	m := rupeeAmountRe.FindStringSubmatch(transcript)
	if m == nil {
		m = rsAmountRe.FindStringSubmatch(transcript)
	}
	if m == nil {
		return 0, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// repairDate keeps a seed date that already passes strict validation and
// otherwise tries, in order: "29 August 2025" long form, dd/mm/yyyy or
// dd-mm-yyyy, then a bare yyyy-mm-dd anywhere in the transcript, kept only
// when it parses as a real calendar date. All dates
// are built as UTC calendar dates so no timezone can shift the day. With
// nothing to go on, today wins.
func repairDate(seedDate, transcript string, now time.Time) string {
	if len(seedDate) > len(dateLayout) {
		seedDate = seedDate[:len(dateLayout)]
	}
	if _, err := time.Parse(dateLayout, seedDate); err == nil {
		return seedDate
	}

	if m := longDateRe.FindStringSubmatch(transcript); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if mon, ok := monthsByPrefix[strings.ToLower(m[2][:3])]; ok {
			return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		}
	}

	if m := dmyDateRe.FindStringSubmatch(transcript); m != nil {
		day, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if mon >= 1 && mon <= 12 {
			return time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		}
	}

	if m := isoDateRe.FindStringSubmatch(transcript); m != nil {
		if _, err := time.Parse(dateLayout, m[0]); err == nil {
			return m[0]
		}
	}

	return now.UTC().Format(dateLayout)
}

func categoryFromTranscript(transcript string) (string, bool) {
	for _, h := range categoryHints {
		if h.re.MatchString(transcript) {
			return h.category, true
		}
	}
	return "", false
}

// descriptionFromTranscript prefers a "paid to <name>" line; failing that
// a generic placeholder.
func descriptionFromTranscript(transcript string) string {
	if m := paidToRe.FindStringSubmatch(transcript); m != nil {
		name := strings.TrimSpace(m[1])
		if runes := []rune(name); len(runes) > descriptionLimit {
			name = string(runes[:descriptionLimit])
		}
		if name != "" {
			return name
		}
	}
	return "Receipt import"
}
