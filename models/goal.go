package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// SAVINGS GOAL MODEL
// ============================================================================

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
)

type Goal struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	Deadline     *string         `json:"deadline,omitempty"`
	OwnerID      *string         `json:"owner_id"`
	OwnerType    string          `json:"owner_type"`
	Status       string          `json:"status"`
	Icon         string          `json:"icon"`
	Color        string          `json:"color"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type GoalUpsertRequest struct {
	Title        string          `json:"title" binding:"required"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required"`
	Deadline     *string         `json:"deadline"`
	OwnerID      *string         `json:"owner_id"`
	OwnerType    string          `json:"owner_type" binding:"required,oneof=individual shared"`
	Icon         string          `json:"icon"`
	Color        string          `json:"color"`
}

type AddFundsRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}
