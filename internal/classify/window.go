package classify

import (
	"time"
)

const dateLayout = "2006-01-02"

// MonthWindow returns the current calendar month as [first day, first day
// of next month). All windows are computed on UTC calendar dates.
func MonthWindow(now time.Time) (start, end string) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	return first.Format(dateLayout), next.Format(dateLayout)
}

// LastMonthWindow returns the previous calendar month.
func LastMonthWindow(now time.Time) (start, end string) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return prev.Format(dateLayout), first.Format(dateLayout)
}

// LastWeekWindow returns the seven days before today: [today-7, today).
func LastWeekWindow(now time.Time) (start, end string) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -7).Format(dateLayout), today.Format(dateLayout)
}
