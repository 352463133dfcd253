package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// TRANSACTION MODEL
// ============================================================================

// Transaction is a single ledger row. Rows generated from a recurring series
// carry a recurrence_id and an occurrence_date; manually entered rows don't.
type Transaction struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"`
	CategoryID     string          `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	OwnerID        *string         `json:"owner_id"`
	OwnerType      string          `json:"owner_type"`
	Date           string          `json:"date"`
	Frequency      string          `json:"frequency"`
	HasReceipt     bool            `json:"has_receipt"`
	ReceiptURL     *string         `json:"receipt_url,omitempty"`
	RecurrenceID   *string         `json:"recurrence_id,omitempty"`
	OccurrenceDate *string         `json:"occurrence_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type TransactionSummary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetBalance    decimal.Decimal `json:"net_balance"`
}

// ============================================================================
// SHARED ENUM VALUES
// ============================================================================

const (
	TypeIncome  = "income"
	TypeExpense = "expense"

	OwnerTypeIndividual = "individual"
	OwnerTypeShared     = "shared"

	FrequencyOneTime  = "one-time"
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyBiWeekly = "bi-weekly"
	FrequencyMonthly  = "monthly"
)

// ============================================================================
// REQUESTS
// ============================================================================

type CreateTransactionRequest struct {
	Name         string          `json:"name" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=income expense"`
	CategoryID   string          `json:"category_id" binding:"required"`
	CategoryName string          `json:"category_name"`
	OwnerID      *string         `json:"owner_id"`
	OwnerType    string          `json:"owner_type" binding:"required,oneof=individual shared"`
	Date         string          `json:"date" binding:"required"`
	ReceiptURL   *string         `json:"receipt_url"`
}

type UpdateTransactionRequest struct {
	Name         string          `json:"name" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=income expense"`
	CategoryID   string          `json:"category_id" binding:"required"`
	CategoryName string          `json:"category_name"`
	OwnerID      *string         `json:"owner_id"`
	OwnerType    string          `json:"owner_type" binding:"required,oneof=individual shared"`
	Date         string          `json:"date" binding:"required"`
	ReceiptURL   *string         `json:"receipt_url"`
}

// TransactionFilter narrows List queries. Zero values mean "no filter".
type TransactionFilter struct {
	Month   string // YYYY-MM
	Type    string
	OwnerID string
}
