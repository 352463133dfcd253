package services

import (
	"fmt"
	"testing"

	"github.com/fintrackhq/fintrack-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// occurrenceRow builds an existing row that perfectly matches the series,
// the way a previous sync would have left it.
func occurrenceRow(series *models.RecurringSeries, id, date string) models.Transaction {
	tx := BuildOccurrence(series, date)
	tx.ID = id
	return tx
}

func TestBuildOccurrence(t *testing.T) {
	series := testSeries(models.FrequencyMonthly, "2026-01-15", 15)
	tx := BuildOccurrence(series, "2026-03-15")

	assert.Equal(t, series.Name, tx.Name)
	assert.True(t, tx.Amount.Equal(series.Amount))
	assert.Equal(t, series.Type, tx.Type)
	assert.Equal(t, series.CategoryID, tx.CategoryID)
	assert.Equal(t, models.FrequencyOneTime, tx.Frequency)
	require.NotNil(t, tx.RecurrenceID)
	assert.Equal(t, series.ID, *tx.RecurrenceID)
	assert.Equal(t, "2026-03-15", tx.Date)
	require.NotNil(t, tx.OccurrenceDate)
	assert.Equal(t, "2026-03-15", *tx.OccurrenceDate)
	assert.False(t, tx.HasReceipt)
}

func TestReconcileCreatesMissingOccurrences(t *testing.T) {
	series := testSeries(models.FrequencyMonthly, "2026-01-15", 15)
	ops := ReconcileSeries(series, nil, nil, "2026-01-15")

	assert.Empty(t, ops.Update)
	assert.Empty(t, ops.Delete)
	// 24-month horizon from 2026-01-15 reaches 2028-01-15: Jan 2026 through
	// Jan 2028 inclusive.
	require.Len(t, ops.Create, 25)
	assert.Equal(t, "2026-01-15", ops.Create[0].Date)
	assert.Equal(t, "2028-01-15", ops.Create[len(ops.Create)-1].Date)
}

func TestReconcileIsIdempotent(t *testing.T) {
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	first := ReconcileSeries(series, nil, nil, "2026-01-05")
	require.NotEmpty(t, first.Create)

	// Persist the first diff, then reconcile again over the result.
	existing := make([]models.Transaction, len(first.Create))
	for i, tx := range first.Create {
		tx.ID = fmt.Sprintf("occ-%d", i)
		existing[i] = tx
	}

	second := ReconcileSeries(series, existing, nil, "2026-01-05")
	assert.True(t, second.Empty(), "second reconcile must be a no-op, got %+v", second)
}

func TestReconcileCollapsesDuplicates(t *testing.T) {
	series := testSeries(models.FrequencyMonthly, "2026-01-15", 15)
	today := "2026-03-01"

	duplicateA := occurrenceRow(series, "dup-a", "2026-03-15")
	duplicateB := occurrenceRow(series, "dup-b", "2026-03-15")

	ops := ReconcileSeries(series, []models.Transaction{duplicateA, duplicateB}, nil, today)

	// Exactly one of the twins dies, the first one survives untouched.
	assert.Equal(t, []string{"dup-b"}, ops.Delete)
	assert.Empty(t, ops.Update)
	for _, created := range ops.Create {
		assert.NotEqual(t, "2026-03-15", created.Date, "deduped date must not be recreated")
	}
}

func TestReconcileCollapsesDuplicatesAndRefreshesDriftedKeeper(t *testing.T) {
	series := testSeries(models.FrequencyMonthly, "2026-01-15", 15)

	keeper := occurrenceRow(series, "dup-a", "2026-03-15")
	keeper.Amount = decimal.NewFromInt(999) // drifted from the series
	duplicate := occurrenceRow(series, "dup-b", "2026-03-15")

	ops := ReconcileSeries(series, []models.Transaction{keeper, duplicate}, nil, "2026-03-01")

	assert.Equal(t, []string{"dup-b"}, ops.Delete)
	require.Len(t, ops.Update, 1)
	assert.Equal(t, "dup-a", ops.Update[0].ID)
	assert.True(t, ops.Update[0].Fields.Amount.Equal(series.Amount))
}

func TestReconcileUpdatesDriftedFields(t *testing.T) {
	series := testSeries(models.FrequencyMonthly, "2026-01-15", 15)

	drifted := occurrenceRow(series, "occ-1", "2026-02-15")
	drifted.Name = "Old Rent"
	drifted.CategoryName = "Misc"

	ops := ReconcileSeries(series, []models.Transaction{drifted}, nil, "2026-02-20")

	require.Len(t, ops.Update, 1)
	assert.Equal(t, "occ-1", ops.Update[0].ID)
	assert.Equal(t, series.Name, ops.Update[0].Fields.Name)
	assert.Equal(t, series.CategoryName, ops.Update[0].Fields.CategoryName)
	assert.NotContains(t, ops.Delete, "occ-1")
}

func TestReconcileUpdatesMismatchedOccurrenceDate(t *testing.T) {
	series := testSeries(models.FrequencyMonthly, "2026-01-15", 15)

	skewed := occurrenceRow(series, "occ-1", "2026-02-15")
	wrongDate := "2026-02-14"
	skewed.OccurrenceDate = &wrongDate

	ops := ReconcileSeries(series, []models.Transaction{skewed}, nil, "2026-02-20")

	require.Len(t, ops.Update, 1)
	require.NotNil(t, ops.Update[0].Fields.OccurrenceDate)
	assert.Equal(t, "2026-02-15", *ops.Update[0].Fields.OccurrenceDate)
}

func TestReconcileDeletesStaleOccurrences(t *testing.T) {
	// Series was shortened: rows past the new end date must go.
	series := withEndDate(testSeries(models.FrequencyMonthly, "2026-01-15", 15), "2026-03-31")

	inRange := occurrenceRow(series, "occ-keep", "2026-02-15")
	stale := occurrenceRow(series, "occ-stale", "2026-05-15")

	ops := ReconcileSeries(series, []models.Transaction{inRange, stale}, nil, "2026-01-20")

	assert.Contains(t, ops.Delete, "occ-stale")
	assert.NotContains(t, ops.Delete, "occ-keep")
}

func TestReconcileExceptionsSuppressGeneration(t *testing.T) {
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	exceptions := []models.RecurringException{
		{RecurrenceID: series.ID, Date: "2026-01-12", Kind: models.ExceptionManualDelete},
		{RecurrenceID: series.ID, Date: "2026-01-19", Kind: models.ExceptionPauseSkip},
	}

	ops := ReconcileSeries(series, nil, exceptions, "2026-01-05")

	for _, created := range ops.Create {
		assert.NotEqual(t, "2026-01-12", created.Date, "manual-delete date must stay suppressed")
		assert.NotEqual(t, "2026-01-19", created.Date, "pause-skip date must stay suppressed")
	}
}

func TestReconcileExcludedExistingRowIsDeleted(t *testing.T) {
	// A row exists for a date the user manually deleted via exception:
	// reconcile must remove it, not refresh it.
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	row := occurrenceRow(series, "occ-1", "2026-01-12")
	exceptions := []models.RecurringException{
		{RecurrenceID: series.ID, Date: "2026-01-12", Kind: models.ExceptionManualDelete},
	}

	ops := ReconcileSeries(series, []models.Transaction{row}, exceptions, "2026-01-05")

	assert.Contains(t, ops.Delete, "occ-1")
	assert.Empty(t, ops.Update)
}

func TestReconcilePausedSeriesKeepsOnlyHistory(t *testing.T) {
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	series.Status = models.RecurringStatusPaused
	today := "2026-02-01"

	history := occurrenceRow(series, "occ-past", "2026-01-12")
	future := occurrenceRow(series, "occ-future", "2026-02-09")

	ops := ReconcileSeries(series, []models.Transaction{history, future}, nil, today)

	// Future rows disappear, history survives and missing history backfills.
	assert.Contains(t, ops.Delete, "occ-future")
	assert.NotContains(t, ops.Delete, "occ-past")
	for _, created := range ops.Create {
		assert.Equal(t, -1, CompareISODate(created.Date, today), "paused series must not create dates >= today")
	}
	createdDates := make([]string, len(ops.Create))
	for i, tx := range ops.Create {
		createdDates[i] = tx.Date
	}
	assert.ElementsMatch(t, []string{"2026-01-05", "2026-01-19", "2026-01-26"}, createdDates)
}

func TestReconcileResumeRestoresGeneration(t *testing.T) {
	// Paused series with pause-skip exceptions; resuming (status active,
	// exceptions cleared from the resume date) brings future dates back.
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	resumeFrom := "2026-02-01"

	// Pause left exceptions for dates >= pause date; resume cleared those
	// >= resumeFrom, leaving only one from before the resume point.
	remaining := []models.RecurringException{
		{RecurrenceID: series.ID, Date: "2026-01-26", Kind: models.ExceptionPauseSkip},
	}

	ops := ReconcileSeries(series, nil, remaining, resumeFrom)

	createdDates := make(map[string]struct{})
	for _, tx := range ops.Create {
		createdDates[tx.Date] = struct{}{}
	}
	assert.NotContains(t, createdDates, "2026-01-26")
	assert.Contains(t, createdDates, "2026-02-02")
	assert.Contains(t, createdDates, "2026-02-09")
}

func TestReconcileOutputIsDeterministic(t *testing.T) {
	series := testSeries(models.FrequencyWeekly, "2026-01-05", 5)
	existing := []models.Transaction{
		occurrenceRow(series, "b", "2026-01-12"),
		occurrenceRow(series, "a", "2026-01-12"),
		occurrenceRow(series, "c", "2026-01-19"),
	}

	first := ReconcileSeries(series, existing, nil, "2026-01-05")
	second := ReconcileSeries(series, existing, nil, "2026-01-05")

	assert.Equal(t, first, second)
	// Keeper is the first row in fetch order, so "a" is the duplicate here.
	assert.Equal(t, []string{"a"}, first.Delete)
}
