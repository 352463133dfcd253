package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fintrackhq/fintrack-api/models"
	"github.com/fintrackhq/fintrack-api/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxBatchOps caps how many statements go into one transaction when a sync
// touches a large horizon.
const maxBatchOps = 450

var validRecurringFrequencies = []string{
	models.FrequencyDaily,
	models.FrequencyWeekly,
	models.FrequencyBiWeekly,
	models.FrequencyMonthly,
}

type RecurringService struct {
	db *sql.DB
}

func NewRecurringService(db *sql.DB) *RecurringService {
	return &RecurringService{db: db}
}

func todayISO() string {
	return time.Now().UTC().Format(isoDateLayout)
}

// exceptionID builds the deterministic key that makes exception writes
// idempotent: {series}_{date}_{suffix}.
func exceptionID(recurrenceID, date, kind string) string {
	suffix := "manual"
	if kind == models.ExceptionPauseSkip {
		suffix = "pause"
	}
	return fmt.Sprintf("%s_%s_%s", recurrenceID, date, suffix)
}

func coerceFrequency(value string) string {
	for _, f := range validRecurringFrequencies {
		if value == f {
			return f
		}
	}
	return models.FrequencyMonthly
}

func coerceStatus(value string) string {
	if value == models.RecurringStatusPaused {
		return models.RecurringStatusPaused
	}
	return models.RecurringStatusActive
}

// normalizeRecurringInput turns a request into storable series fields.
// The anchor day defaults to the start date's day-of-month.
func normalizeRecurringInput(req *models.RecurringUpsertRequest) (*models.RecurringSeries, error) {
	start, ok := parseISODate(req.StartDate)
	if !ok {
		return nil, fmt.Errorf("invalid start_date %q", req.StartDate)
	}
	if req.EndDate != nil && *req.EndDate != "" {
		if _, ok := parseISODate(*req.EndDate); !ok {
			return nil, fmt.Errorf("invalid end_date %q", *req.EndDate)
		}
		if CompareISODate(req.StartDate, *req.EndDate) > 0 {
			return nil, fmt.Errorf("start_date must not be after end_date")
		}
	}

	amount := req.Amount
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	anchorDay := start.Day()
	if req.AnchorDay != nil {
		anchorDay = *req.AnchorDay
	}
	ownerType := models.OwnerTypeShared
	if req.OwnerType == models.OwnerTypeIndividual {
		ownerType = models.OwnerTypeIndividual
	}
	txType := models.TypeExpense
	if req.Type == models.TypeIncome {
		txType = models.TypeIncome
	}
	var endDate *string
	if req.EndDate != nil && *req.EndDate != "" {
		endDate = req.EndDate
	}

	return &models.RecurringSeries{
		Name:         strings.TrimSpace(req.Name),
		Amount:       amount,
		Type:         txType,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		OwnerID:      req.OwnerID,
		OwnerType:    ownerType,
		Frequency:    coerceFrequency(req.Frequency),
		StartDate:    req.StartDate,
		EndDate:      endDate,
		AnchorDay:    ClampAnchorDay(anchorDay),
		Status:       coerceStatus(req.Status),
	}, nil
}

const recurringColumns = `id, name, amount, type, category_id, category_name,
	owner_id, owner_type, frequency, start_date, end_date, anchor_day, status,
	created_at, updated_at`

func scanRecurringSeries(scanner interface{ Scan(...any) error }) (*models.RecurringSeries, error) {
	var series models.RecurringSeries
	err := scanner.Scan(
		&series.ID,
		&series.Name,
		&series.Amount,
		&series.Type,
		&series.CategoryID,
		&series.CategoryName,
		&series.OwnerID,
		&series.OwnerType,
		&series.Frequency,
		&series.StartDate,
		&series.EndDate,
		&series.AnchorDay,
		&series.Status,
		&series.CreatedAt,
		&series.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// Create inserts a new series and materializes its occurrences.
func (s *RecurringService) Create(ctx context.Context, req *models.RecurringUpsertRequest) (*models.RecurringSeries, error) {
	series, err := normalizeRecurringInput(req)
	if err != nil {
		return nil, err
	}
	series.ID = uuid.New().String()
	series.CreatedAt = time.Now()
	series.UpdatedAt = time.Now()

	query := `
		INSERT INTO recurring_series
			(id, name, amount, type, category_id, category_name, owner_id, owner_type,
			 frequency, start_date, end_date, anchor_day, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		series.ID, series.Name, series.Amount, series.Type, series.CategoryID,
		series.CategoryName, series.OwnerID, series.OwnerType, series.Frequency,
		series.StartDate, series.EndDate, series.AnchorDay, series.Status,
		series.CreatedAt, series.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := s.syncSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("series created but sync failed: %w", err)
	}
	return series, nil
}

// Update rewrites a series definition and re-syncs its occurrences.
func (s *RecurringService) Update(ctx context.Context, id string, req *models.RecurringUpsertRequest) (*models.RecurringSeries, error) {
	series, err := normalizeRecurringInput(req)
	if err != nil {
		return nil, err
	}
	series.ID = id
	series.UpdatedAt = time.Now()

	query := `
		UPDATE recurring_series
		SET name = $1, amount = $2, type = $3, category_id = $4, category_name = $5,
		    owner_id = $6, owner_type = $7, frequency = $8, start_date = $9,
		    end_date = $10, anchor_day = $11, status = $12, updated_at = $13
		WHERE id = $14
	`
	result, err := s.db.ExecContext(ctx, query,
		series.Name, series.Amount, series.Type, series.CategoryID, series.CategoryName,
		series.OwnerID, series.OwnerType, series.Frequency, series.StartDate,
		series.EndDate, series.AnchorDay, series.Status, series.UpdatedAt, id,
	)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, sql.ErrNoRows
	}

	if err := s.syncSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("series updated but sync failed: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RecurringService) GetByID(ctx context.Context, id string) (*models.RecurringSeries, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_series WHERE id = $1`
	return scanRecurringSeries(s.db.QueryRowContext(ctx, query, id))
}

func (s *RecurringService) List(ctx context.Context) ([]models.RecurringSeries, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_series ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []models.RecurringSeries{}
	for rows.Next() {
		item, err := scanRecurringSeries(rows)
		if err != nil {
			return nil, err
		}
		series = append(series, *item)
	}
	return series, rows.Err()
}

// Delete removes a series and cascades to its occurrences and exceptions.
func (s *RecurringService) Delete(ctx context.Context, id string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE recurrence_id = $1", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM recurring_exceptions WHERE recurrence_id = $1", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM recurring_series WHERE id = $1", id); err != nil {
			return err
		}
		return nil
	})
}

// Pause stops future generation. Every desired date from the pause point to
// the horizon gets a pause-skip exception row, then the series re-syncs so
// future occurrences disappear while history stays.
func (s *RecurringService) Pause(ctx context.Context, id, pauseFromDate string) (*models.RecurringSeries, error) {
	series, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pauseFromDate == "" {
		pauseFromDate = todayISO()
	}

	datesToSkip := GenerateOccurrenceDates(series, pauseFromDate, DefaultHorizonEnd(pauseFromDate), nil)
	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		for _, date := range datesToSkip {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO recurring_exceptions (id, recurrence_id, date, kind)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO NOTHING
			`, exceptionID(id, date, models.ExceptionPauseSkip), id, date, models.ExceptionPauseSkip)
			if err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE recurring_series SET status = $1, updated_at = NOW() WHERE id = $2",
			models.RecurringStatusPaused, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	series.Status = models.RecurringStatusPaused
	if err := s.syncSeries(ctx, series); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Resume clears pause-skip exceptions from the resume date forward and
// re-syncs so generation picks back up. Manual-delete exceptions are
// permanent and survive resume.
func (s *RecurringService) Resume(ctx context.Context, id, resumeFromDate string) (*models.RecurringSeries, error) {
	series, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resumeFromDate == "" {
		resumeFromDate = todayISO()
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM recurring_exceptions
			WHERE recurrence_id = $1 AND kind = $2 AND date >= $3
		`, id, models.ExceptionPauseSkip, resumeFromDate)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE recurring_series SET status = $1, updated_at = NOW() WHERE id = $2",
			models.RecurringStatusActive, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	series.Status = models.RecurringStatusActive
	if err := s.syncSeries(ctx, series); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Sync reconciles one series by id.
func (s *RecurringService) Sync(ctx context.Context, id string) error {
	series, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.syncSeries(ctx, series)
}

// SyncAll reconciles every series. A bad series degrades to "generates
// nothing" inside the engine, so one malformed row can't abort the sweep;
// only storage errors stop it.
func (s *RecurringService) SyncAll(ctx context.Context) error {
	all, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if err := s.syncSeries(ctx, &all[i]); err != nil {
			return fmt.Errorf("sync series %s: %w", all[i].ID, err)
		}
	}
	return nil
}

func (s *RecurringService) Stats(ctx context.Context) (*models.RecurringStats, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &models.RecurringStats{
		Total:         len(all),
		HorizonMonths: RecurringHorizonMonths,
	}
	for _, series := range all {
		if series.Status == models.RecurringStatusActive {
			stats.Active++
		} else {
			stats.Paused++
		}
		if series.Frequency == models.FrequencyMonthly {
			stats.Monthly++
		}
	}
	return stats, nil
}

// syncSeries fetches the series' occurrence and exception rows, runs the
// pure reconciler, and applies the resulting operations.
func (s *RecurringService) syncSeries(ctx context.Context, series *models.RecurringSeries) error {
	existing, err := s.occurrencesForSeries(ctx, series.ID)
	if err != nil {
		return err
	}
	exceptions, err := s.exceptionsForSeries(ctx, series.ID)
	if err != nil {
		return err
	}

	ops := ReconcileSeries(series, existing, exceptions, todayISO())
	if ops.Empty() {
		return nil
	}
	return s.applyOps(ctx, ops)
}

func (s *RecurringService) occurrencesForSeries(ctx context.Context, recurrenceID string) ([]models.Transaction, error) {
	query := `
		SELECT id, name, amount, type, category_id, category_name, owner_id, owner_type,
		       date, frequency, has_receipt, receipt_url, recurrence_id, occurrence_date,
		       created_at, updated_at
		FROM transactions
		WHERE recurrence_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, recurrenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID, &tx.Name, &tx.Amount, &tx.Type, &tx.CategoryID, &tx.CategoryName,
			&tx.OwnerID, &tx.OwnerType, &tx.Date, &tx.Frequency, &tx.HasReceipt,
			&tx.ReceiptURL, &tx.RecurrenceID, &tx.OccurrenceDate, &tx.CreatedAt, &tx.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (s *RecurringService) exceptionsForSeries(ctx context.Context, recurrenceID string) ([]models.RecurringException, error) {
	query := `
		SELECT id, recurrence_id, date, kind, created_at
		FROM recurring_exceptions
		WHERE recurrence_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, recurrenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exceptions []models.RecurringException
	for rows.Next() {
		var ex models.RecurringException
		if err := rows.Scan(&ex.ID, &ex.RecurrenceID, &ex.Date, &ex.Kind, &ex.CreatedAt); err != nil {
			return nil, err
		}
		exceptions = append(exceptions, ex)
	}
	return exceptions, rows.Err()
}

// applyOps persists a reconcile diff in transactional chunks.
func (s *RecurringService) applyOps(ctx context.Context, ops ReconcileOps) error {
	var statements []func(tx *sql.Tx) error

	for i := range ops.Create {
		occurrence := ops.Create[i]
		statements = append(statements, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO transactions
					(id, name, amount, type, category_id, category_name, owner_id, owner_type,
					 date, frequency, has_receipt, receipt_url, recurrence_id, occurrence_date)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			`, uuid.New().String(), occurrence.Name, occurrence.Amount, occurrence.Type,
				occurrence.CategoryID, occurrence.CategoryName, occurrence.OwnerID,
				occurrence.OwnerType, occurrence.Date, occurrence.Frequency,
				occurrence.HasReceipt, occurrence.ReceiptURL, occurrence.RecurrenceID,
				occurrence.OccurrenceDate)
			return err
		})
	}
	for i := range ops.Update {
		update := ops.Update[i]
		statements = append(statements, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
				UPDATE transactions
				SET name = $1, amount = $2, type = $3, category_id = $4, category_name = $5,
				    owner_id = $6, owner_type = $7, date = $8, frequency = $9,
				    recurrence_id = $10, occurrence_date = $11, updated_at = NOW()
				WHERE id = $12
			`, update.Fields.Name, update.Fields.Amount, update.Fields.Type,
				update.Fields.CategoryID, update.Fields.CategoryName, update.Fields.OwnerID,
				update.Fields.OwnerType, update.Fields.Date, update.Fields.Frequency,
				update.Fields.RecurrenceID, update.Fields.OccurrenceDate, update.ID)
			return err
		})
	}
	for _, id := range ops.Delete {
		deleteID := id
		statements = append(statements, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1", deleteID)
			return err
		})
	}

	for start := 0; start < len(statements); start += maxBatchOps {
		end := start + maxBatchOps
		if end > len(statements) {
			end = len(statements)
		}
		chunk := statements[start:end]
		err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
			for _, apply := range chunk {
				if err := apply(tx); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
