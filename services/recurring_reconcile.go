package services

import (
	"github.com/fintrackhq/fintrack-api/models"
)

// OccurrenceUpdate refreshes the denormalized fields of one existing
// occurrence row from its series.
type OccurrenceUpdate struct {
	ID     string
	Fields models.Transaction
}

// ReconcileOps is the diff between desired and existing occurrences.
// Applying it (batched writes, retries) is the storage layer's problem;
// computing it is pure.
type ReconcileOps struct {
	Create []models.Transaction
	Update []OccurrenceUpdate
	Delete []string
}

func (ops ReconcileOps) Empty() bool {
	return len(ops.Create) == 0 && len(ops.Update) == 0 && len(ops.Delete) == 0
}

// BuildOccurrence maps a (series, date) pair to the transaction row that
// should exist for it. Occurrences are stored as one-time transactions
// linked back to the series.
func BuildOccurrence(series *models.RecurringSeries, date string) models.Transaction {
	occurrenceDate := date
	return models.Transaction{
		Name:           series.Name,
		Amount:         series.Amount,
		Type:           series.Type,
		CategoryID:     series.CategoryID,
		CategoryName:   series.CategoryName,
		OwnerID:        series.OwnerID,
		OwnerType:      series.OwnerType,
		Date:           date,
		Frequency:      models.FrequencyOneTime,
		HasReceipt:     false,
		RecurrenceID:   &series.ID,
		OccurrenceDate: &occurrenceDate,
	}
}

// occurrenceMatchesSeries reports whether an existing row still carries the
// series' current denormalized fields and a consistent date/occurrence-date
// pair. Anything off means the row needs a refresh.
func occurrenceMatchesSeries(tx *models.Transaction, series *models.RecurringSeries) bool {
	return tx.Name == series.Name &&
		tx.Amount.Equal(series.Amount) &&
		tx.Type == series.Type &&
		tx.CategoryID == series.CategoryID &&
		tx.CategoryName == series.CategoryName &&
		equalStringPtr(tx.OwnerID, series.OwnerID) &&
		tx.OwnerType == series.OwnerType &&
		tx.Frequency == models.FrequencyOneTime &&
		tx.RecurrenceID != nil && *tx.RecurrenceID == series.ID &&
		tx.OccurrenceDate != nil && *tx.OccurrenceDate == tx.Date
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ReconcileSeries diffs the desired occurrence set of a series against its
// existing rows and returns the minimal create/update/delete operations.
//
// Both exception kinds feed the exclusion set. A paused series keeps its
// historical occurrences (dates strictly before today) but generates nothing
// new. Duplicate rows on the same date are self-healing: the first row in
// fetch order survives, the rest are deleted, so a race that produced
// duplicates converges on the next sync.
func ReconcileSeries(series *models.RecurringSeries, existing []models.Transaction, exceptions []models.RecurringException, today string) ReconcileOps {
	horizonEnd := DefaultHorizonEnd(today)

	excluded := make(map[string]struct{}, len(exceptions))
	for _, ex := range exceptions {
		excluded[ex.Date] = struct{}{}
	}

	desired := GenerateOccurrenceDates(series, series.StartDate, horizonEnd, excluded)
	if series.Status == models.RecurringStatusPaused {
		kept := desired[:0]
		for _, date := range desired {
			if CompareISODate(date, today) < 0 {
				kept = append(kept, date)
			}
		}
		desired = kept
	}

	desiredSet := make(map[string]struct{}, len(desired))
	for _, date := range desired {
		desiredSet[date] = struct{}{}
	}

	// Group existing rows by date, preserving fetch order so the keeper
	// choice and the output order are deterministic.
	var dateOrder []string
	byDate := make(map[string][]models.Transaction)
	for _, tx := range existing {
		if _, seen := byDate[tx.Date]; !seen {
			dateOrder = append(dateOrder, tx.Date)
		}
		byDate[tx.Date] = append(byDate[tx.Date], tx)
	}

	var ops ReconcileOps
	for _, date := range dateOrder {
		group := byDate[date]
		keeper := group[0]
		for _, duplicate := range group[1:] {
			ops.Delete = append(ops.Delete, duplicate.ID)
		}

		if _, want := desiredSet[date]; !want {
			ops.Delete = append(ops.Delete, keeper.ID)
			continue
		}
		if !occurrenceMatchesSeries(&keeper, series) {
			ops.Update = append(ops.Update, OccurrenceUpdate{
				ID:     keeper.ID,
				Fields: BuildOccurrence(series, date),
			})
		}
	}

	for _, date := range desired {
		if _, exists := byDate[date]; exists {
			continue
		}
		ops.Create = append(ops.Create, BuildOccurrence(series, date))
	}

	return ops
}
