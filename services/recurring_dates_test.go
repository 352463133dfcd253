package services

import (
	"testing"

	"github.com/fintrackhq/fintrack-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries(frequency, startDate string, anchorDay int) *models.RecurringSeries {
	return &models.RecurringSeries{
		ID:           "series-1",
		Name:         "Rent",
		Amount:       decimal.NewFromInt(1200),
		Type:         models.TypeExpense,
		CategoryID:   "housing",
		CategoryName: "Housing",
		OwnerType:    models.OwnerTypeShared,
		Frequency:    frequency,
		StartDate:    startDate,
		AnchorDay:    anchorDay,
		Status:       models.RecurringStatusActive,
	}
}

func withEndDate(series *models.RecurringSeries, endDate string) *models.RecurringSeries {
	series.EndDate = &endDate
	return series
}

func TestClampAnchorDay(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{15, 15},
		{31, 31},
		{32, 1},
		{100, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampAnchorDay(tt.in), "ClampAnchorDay(%d)", tt.in)
	}
}

func TestResolveMonthlyDateForMonth(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		anchorDay int
		want      string
	}{
		{"regular month", 2026, 1, 15, "2026-01-15"},
		{"anchor 31 in 31-day month", 2026, 3, 31, "2026-03-31"},
		{"anchor 31 overflows February to day 1", 2026, 2, 31, "2026-02-01"},
		{"anchor 31 overflows April to day 1", 2026, 4, 31, "2026-04-01"},
		{"anchor 29 in leap February", 2024, 2, 29, "2024-02-29"},
		{"anchor 29 overflows non-leap February", 2026, 2, 29, "2026-02-01"},
		{"anchor 30 overflows February even in leap year", 2024, 2, 30, "2024-02-01"},
		{"out-of-range anchor clamps to 1", 2026, 6, 0, "2026-06-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMonthlyDateForMonth(tt.year, tt.month, tt.anchorDay))
		})
	}
}

func TestCompareISODate(t *testing.T) {
	assert.Equal(t, -1, CompareISODate("2026-01-31", "2026-02-01"))
	assert.Equal(t, 0, CompareISODate("2026-02-01", "2026-02-01"))
	assert.Equal(t, 1, CompareISODate("2027-01-01", "2026-12-31"))
}

func TestDefaultHorizonEnd(t *testing.T) {
	assert.Equal(t, "2028-01-15", DefaultHorizonEnd("2026-01-15"))
	assert.Equal(t, "2028-02-28", DefaultHorizonEnd("2026-02-28"))
}

func TestNextOccurrenceDate(t *testing.T) {
	assert.Equal(t, "2026-01-02", NextOccurrenceDate("2026-01-01", models.FrequencyDaily, 1))
	assert.Equal(t, "2026-01-08", NextOccurrenceDate("2026-01-01", models.FrequencyWeekly, 1))
	assert.Equal(t, "2026-01-15", NextOccurrenceDate("2026-01-01", models.FrequencyBiWeekly, 1))
	assert.Equal(t, "2026-02-15", NextOccurrenceDate("2026-01-15", models.FrequencyMonthly, 15))
	// Day rollover across a year boundary
	assert.Equal(t, "2027-01-01", NextOccurrenceDate("2026-12-31", models.FrequencyDaily, 1))
	// Unknown frequency stays put, which makes callers fail closed
	assert.Equal(t, "2026-01-01", NextOccurrenceDate("2026-01-01", "yearly", 1))
}

func TestGenerateOccurrenceDatesWeeklySpacing(t *testing.T) {
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	dates := GenerateOccurrenceDates(series, "2026-01-05", "2026-03-01", nil)

	require.NotEmpty(t, dates)
	assert.Equal(t, "2026-01-05", dates[0])
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, addDays(dates[i-1], 7), dates[i], "dates must be exactly 7 days apart")
	}
	assert.Equal(t, "2026-02-23", dates[len(dates)-1])
}

func TestGenerateOccurrenceDatesMonthlyAnchorOverflow(t *testing.T) {
	// Anchor 31 with February and April in the window: both short months
	// fall back to day 1.
	series := testSeries(models.FrequencyMonthly, "2026-01-31", 31)
	dates := GenerateOccurrenceDates(series, "2026-01-01", "2026-04-30", nil)

	assert.Equal(t, []string{"2026-01-31", "2026-02-01", "2026-03-31", "2026-04-01"}, dates)
}

func TestGenerateOccurrenceDatesStartMonthKeepsLiteralStartDate(t *testing.T) {
	// Start date on Feb 28 with anchor 31: the start month must use the
	// start date itself, later months resolve the anchor.
	series := testSeries(models.FrequencyMonthly, "2026-02-28", 31)
	dates := GenerateOccurrenceDates(series, "2026-02-01", "2026-04-30", nil)

	assert.Equal(t, []string{"2026-02-28", "2026-03-31", "2026-04-01"}, dates)
}

func TestGenerateOccurrenceDatesRespectsEndDate(t *testing.T) {
	series := withEndDate(testSeries(models.FrequencyMonthly, "2026-01-15", 15), "2026-06-30")
	dates := GenerateOccurrenceDates(series, "2026-01-01", "2027-01-01", nil)

	require.NotEmpty(t, dates)
	for _, date := range dates {
		assert.LessOrEqual(t, CompareISODate(date, "2026-06-30"), 0, "no date may pass the end date")
	}
	assert.Equal(t, "2026-06-15", dates[len(dates)-1])
}

func TestGenerateOccurrenceDatesWindowIntersection(t *testing.T) {
	series := testSeries(models.FrequencyDaily, "2026-01-01", 1)

	// Window entirely before the series starts
	assert.Empty(t, GenerateOccurrenceDates(series, "2025-01-01", "2025-12-31", nil))

	// Window narrows the range on both sides
	dates := GenerateOccurrenceDates(series, "2026-01-10", "2026-01-12", nil)
	assert.Equal(t, []string{"2026-01-10", "2026-01-11", "2026-01-12"}, dates)
}

func TestGenerateOccurrenceDatesExcluded(t *testing.T) {
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	excluded := map[string]struct{}{
		"2026-01-12": {},
		"2026-01-26": {},
	}
	dates := GenerateOccurrenceDates(series, "2026-01-05", "2026-02-02", excluded)

	assert.Equal(t, []string{"2026-01-05", "2026-01-19", "2026-02-02"}, dates)
}

func TestGenerateOccurrenceDatesBiWeekly(t *testing.T) {
	series := testSeries(models.FrequencyBiWeekly, "2026-01-02", 2)
	dates := GenerateOccurrenceDates(series, "2026-01-01", "2026-02-15", nil)

	assert.Equal(t, []string{"2026-01-02", "2026-01-16", "2026-01-30", "2026-02-13"}, dates)
}

func TestGenerateOccurrenceDatesFailsClosed(t *testing.T) {
	badStart := testSeries(models.FrequencyWeekly, "not-a-date", 1)
	assert.Empty(t, GenerateOccurrenceDates(badStart, "2026-01-01", "2026-12-31", nil))

	unknownFrequency := testSeries("quarterly", "2026-01-01", 1)
	assert.Empty(t, GenerateOccurrenceDates(unknownFrequency, "2026-01-01", "2026-12-31", nil))
}

func TestGenerateOccurrenceDatesNoDuplicatesAscending(t *testing.T) {
	series := testSeries(models.FrequencyMonthly, "2026-01-31", 31)
	dates := GenerateOccurrenceDates(series, "2026-01-01", "2027-12-31", nil)

	seen := make(map[string]struct{})
	for i, date := range dates {
		_, dup := seen[date]
		require.False(t, dup, "duplicate date %s", date)
		seen[date] = struct{}{}
		if i > 0 {
			require.Equal(t, -1, CompareISODate(dates[i-1], date), "dates must ascend")
		}
	}
}
