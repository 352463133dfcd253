package services

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/fintrackhq/fintrack-api/models"
	"github.com/fintrackhq/fintrack-api/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionService struct {
	db *sql.DB
}

func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{db: db}
}

const transactionColumns = `id, name, amount, type, category_id, category_name,
	owner_id, owner_type, date, frequency, has_receipt, receipt_url,
	recurrence_id, occurrence_date, created_at, updated_at`

func scanTransaction(scanner interface{ Scan(...any) error }) (*models.Transaction, error) {
	var tx models.Transaction
	err := scanner.Scan(
		&tx.ID, &tx.Name, &tx.Amount, &tx.Type, &tx.CategoryID, &tx.CategoryName,
		&tx.OwnerID, &tx.OwnerType, &tx.Date, &tx.Frequency, &tx.HasReceipt,
		&tx.ReceiptURL, &tx.RecurrenceID, &tx.OccurrenceDate, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns ledger rows, newest date first, optionally narrowed by month
// (YYYY-MM), type and owner.
func (s *TransactionService) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}

	if filter.Month != "" {
		args = append(args, filter.Month)
		query += ` AND left(date, 7) = $` + strconv.Itoa(len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		query += ` AND owner_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func (s *TransactionService) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(s.db.QueryRowContext(ctx, query, id))
}

// Create inserts a manually entered one-time transaction.
func (s *TransactionService) Create(ctx context.Context, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	amount := req.Amount
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	tx := &models.Transaction{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Amount:       amount,
		Type:         req.Type,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		OwnerID:      req.OwnerID,
		OwnerType:    req.OwnerType,
		Date:         req.Date,
		Frequency:    models.FrequencyOneTime,
		HasReceipt:   req.ReceiptURL != nil,
		ReceiptURL:   req.ReceiptURL,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO transactions
			(id, name, amount, type, category_id, category_name, owner_id, owner_type,
			 date, frequency, has_receipt, receipt_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		tx.ID, tx.Name, tx.Amount, tx.Type, tx.CategoryID, tx.CategoryName,
		tx.OwnerID, tx.OwnerType, tx.Date, tx.Frequency, tx.HasReceipt,
		tx.ReceiptURL, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Update edits a transaction. Editing a generated occurrence detaches it
// from its series and records a manual-delete exception for its original
// date, so the series does not regenerate a twin next sync.
func (s *TransactionService) Update(ctx context.Context, id string, req *models.UpdateTransactionRequest) (*models.Transaction, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if existing.RecurrenceID != nil {
			if err := insertManualDeleteException(ctx, tx, *existing.RecurrenceID, existing.Date); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET name = $1, amount = $2, type = $3, category_id = $4, category_name = $5,
			    owner_id = $6, owner_type = $7, date = $8, has_receipt = $9,
			    receipt_url = $10, recurrence_id = NULL, occurrence_date = NULL,
			    updated_at = NOW()
			WHERE id = $11
		`, strings.TrimSpace(req.Name), amount, req.Type, req.CategoryID,
			req.CategoryName, req.OwnerID, req.OwnerType, req.Date,
			req.ReceiptURL != nil, req.ReceiptURL, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a transaction. Deleting a generated occurrence records a
// manual-delete exception so the series never recreates that date.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if existing.RecurrenceID != nil {
			if err := insertManualDeleteException(ctx, tx, *existing.RecurrenceID, existing.Date); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1", id)
		return err
	})
}

// Summary totals the ledger for an optional month filter.
func (s *TransactionService) Summary(ctx context.Context, month string) (*models.TransactionSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)
		FROM transactions
	`
	args := []any{}
	if month != "" {
		query += ` WHERE left(date, 7) = $1`
		args = append(args, month)
	}

	var summary models.TransactionSummary
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&summary.TotalIncome, &summary.TotalExpenses); err != nil {
		return nil, err
	}
	summary.NetBalance = summary.TotalIncome.Sub(summary.TotalExpenses)
	return &summary, nil
}

func (s *TransactionService) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, type FROM categories ORDER BY type, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Type); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func insertManualDeleteException(ctx context.Context, tx *sql.Tx, recurrenceID, date string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO recurring_exceptions (id, recurrence_id, date, kind)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, exceptionID(recurrenceID, date, models.ExceptionManualDelete), recurrenceID, date, models.ExceptionManualDelete)
	return err
}
