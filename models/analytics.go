package models

import "github.com/shopspring/decimal"

// ============================================================================
// ANALYTICS SHAPES
// ============================================================================

// MonthlyTotal is one point of the income/expense trend, keyed by YYYY-MM.
type MonthlyTotal struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type CategoryTotal struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}
