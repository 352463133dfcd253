package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// RECURRING SERIES MODEL
// ============================================================================

const (
	RecurringStatusActive = "active"
	RecurringStatusPaused = "paused"
)

// RecurringSeries defines a repeating income or expense. Occurrences are
// materialized into the transactions table up to a rolling horizon.
type RecurringSeries struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	OwnerID      *string         `json:"owner_id"`
	OwnerType    string          `json:"owner_type"`
	Frequency    string          `json:"frequency"`
	StartDate    string          `json:"start_date"`
	EndDate      *string         `json:"end_date,omitempty"`
	AnchorDay    int             `json:"anchor_day"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ============================================================================
// RECURRING EXCEPTIONS
// ============================================================================

const (
	// ExceptionManualDelete marks a single occurrence the user removed.
	// The series must never regenerate that date.
	ExceptionManualDelete = "manual-delete"
	// ExceptionPauseSkip suppresses a date that fell after a pause action.
	ExceptionPauseSkip = "pause-skip"
)

// RecurringException suppresses generation for one series+date pair.
// Its ID is the deterministic key {recurrence_id}_{date}_{suffix}, which is
// what makes exception writes idempotent.
type RecurringException struct {
	ID           string    `json:"id"`
	RecurrenceID string    `json:"recurrence_id"`
	Date         string    `json:"date"`
	Kind         string    `json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
}

// ============================================================================
// REQUESTS & STATS
// ============================================================================

type RecurringUpsertRequest struct {
	Name         string          `json:"name" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=income expense"`
	CategoryID   string          `json:"category_id" binding:"required"`
	CategoryName string          `json:"category_name"`
	OwnerID      *string         `json:"owner_id"`
	OwnerType    string          `json:"owner_type" binding:"required,oneof=individual shared"`
	Frequency    string          `json:"frequency" binding:"required"`
	StartDate    string          `json:"start_date" binding:"required"`
	EndDate      *string         `json:"end_date"`
	AnchorDay    *int            `json:"anchor_day"`
	Status       string          `json:"status"`
}

type PauseRecurringRequest struct {
	PauseFromDate string `json:"pause_from_date"`
}

type ResumeRecurringRequest struct {
	ResumeFromDate string `json:"resume_from_date"`
}

type RecurringStats struct {
	Active        int `json:"active"`
	Paused        int `json:"paused"`
	Monthly       int `json:"monthly"`
	Total         int `json:"total"`
	HorizonMonths int `json:"horizon_months"`
}
