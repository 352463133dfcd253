package services

import (
	"time"

	"github.com/fintrackhq/fintrack-api/models"
)

// RecurringHorizonMonths is how far ahead of "today" occurrences are
// materialized for open-ended series.
const RecurringHorizonMonths = 24

const isoDateLayout = "2006-01-02"

// Calendar dates are timezone-less YYYY-MM-DD strings throughout the
// recurring engine. They are parsed to UTC midnights only for arithmetic.
func parseISODate(value string) (time.Time, bool) {
	t, err := time.Parse(isoDateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatISODate(t time.Time) string {
	return t.Format(isoDateLayout)
}

// CompareISODate returns -1, 0 or 1. Lexicographic comparison is sufficient
// for zero-padded YYYY-MM-DD strings.
func CompareISODate(a, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// addDays returns value shifted by n calendar days. Unparseable input is
// passed through unchanged.
func addDays(value string, n int) string {
	t, ok := parseISODate(value)
	if !ok {
		return value
	}
	return formatISODate(t.AddDate(0, 0, n))
}

// addMonths shifts by whole months with normalized overflow: a day-of-month
// that doesn't exist in the target month rolls forward (Jan 31 + 1 month =
// Mar 3). Monthly series never rely on this overflow; they re-resolve the
// anchor day per month instead.
func addMonths(value string, n int) string {
	t, ok := parseISODate(value)
	if !ok {
		return value
	}
	return formatISODate(t.AddDate(0, n, 0))
}

func daysInMonth(year, month int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampAnchorDay fails closed: anything outside [1,31] becomes 1. In-range
// values pass through untouched; short-month handling belongs to
// ResolveMonthlyDateForMonth, not here.
func ClampAnchorDay(n int) int {
	if n < 1 || n > 31 {
		return 1
	}
	return n
}

// ResolveMonthlyDateForMonth returns the date a monthly series lands on in
// the given month. When the anchor day exceeds the month's length the date
// falls back to day 1 of that month, not the last day. Tests pin this down;
// changing it silently moves every monthly series in short months.
func ResolveMonthlyDateForMonth(year, month, anchorDay int) string {
	day := ClampAnchorDay(anchorDay)
	if day > daysInMonth(year, month) {
		day = 1
	}
	return formatISODate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// NextOccurrenceDate steps one interval forward from current.
func NextOccurrenceDate(current, frequency string, anchorDay int) string {
	switch frequency {
	case models.FrequencyDaily:
		return addDays(current, 1)
	case models.FrequencyWeekly:
		return addDays(current, 7)
	case models.FrequencyBiWeekly:
		return addDays(current, 14)
	case models.FrequencyMonthly:
		next, ok := parseISODate(addMonths(current, 1))
		if !ok {
			return current
		}
		return ResolveMonthlyDateForMonth(next.Year(), int(next.Month()), anchorDay)
	default:
		return current
	}
}

// DefaultHorizonEnd returns the forward generation boundary for a given day.
func DefaultHorizonEnd(today string) string {
	return addMonths(today, RecurringHorizonMonths)
}

// GenerateOccurrenceDates produces the ordered, duplicate-free set of dates
// on which occurrences of the series should exist inside [fromDate, toDate].
// The effective range is the intersection of the window with the series'
// own start/end dates. Excluded dates are dropped. A series with an
// unparseable start date generates nothing rather than failing, so one bad
// row can't poison a batch sync.
func GenerateOccurrenceDates(series *models.RecurringSeries, fromDate, toDate string, excluded map[string]struct{}) []string {
	start := series.StartDate
	if _, ok := parseISODate(start); !ok {
		return nil
	}

	maxEnd := toDate
	if series.EndDate != nil && CompareISODate(*series.EndDate, toDate) < 0 {
		maxEnd = *series.EndDate
	}
	rangeStart := start
	if CompareISODate(fromDate, start) > 0 {
		rangeStart = fromDate
	}
	if CompareISODate(rangeStart, maxEnd) > 0 {
		return nil
	}

	var dates []string
	include := func(date string) {
		if CompareISODate(date, rangeStart) < 0 {
			return
		}
		if _, skip := excluded[date]; skip {
			return
		}
		dates = append(dates, date)
	}

	if series.Frequency == models.FrequencyMonthly {
		startAt, _ := parseISODate(start)
		startYear, startMonth := startAt.Year(), int(startAt.Month())
		year, month := startYear, startMonth
		for {
			// The start month keeps the literal start date; re-resolving the
			// anchor there could drift a series whose start already sits on a
			// short-month edge.
			candidate := start
			if year != startYear || month != startMonth {
				candidate = ResolveMonthlyDateForMonth(year, month, series.AnchorDay)
			}
			if CompareISODate(candidate, maxEnd) > 0 {
				break
			}
			include(candidate)
			month++
			if month > 12 {
				month = 1
				year++
			}
		}
		return dates
	}

	switch series.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyBiWeekly:
	default:
		return nil
	}
	cursor := start
	for CompareISODate(cursor, maxEnd) <= 0 {
		include(cursor)
		next := NextOccurrenceDate(cursor, series.Frequency, series.AnchorDay)
		if next == cursor {
			break
		}
		cursor = next
	}
	return dates
}
