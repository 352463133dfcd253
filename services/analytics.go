package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fintrackhq/fintrack-api/models"
)

type AnalyticsService struct {
	db *sql.DB
}

func NewAnalyticsService(db *sql.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// MonthlyTrend returns income/expense/net totals per month for the trailing
// window ending at endMonth (YYYY-MM). Months with no rows are filled with
// zeros so charts on the client get a continuous series.
func (s *AnalyticsService) MonthlyTrend(ctx context.Context, endMonth string, months int) ([]models.MonthlyTotal, error) {
	if months < 1 {
		months = 1
	}
	if _, ok := parseISODate(endMonth + "-01"); !ok {
		return nil, fmt.Errorf("invalid month %q", endMonth)
	}
	startMonth := addMonths(endMonth+"-01", -(months - 1))[:7]

	query := `
		SELECT left(date, 7) AS month,
		       COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE left(date, 7) >= $1 AND left(date, 7) <= $2
		GROUP BY left(date, 7)
	`
	rows, err := s.db.QueryContext(ctx, query, startMonth, endMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := make(map[string]models.MonthlyTotal)
	for rows.Next() {
		var total models.MonthlyTotal
		if err := rows.Scan(&total.Month, &total.Income, &total.Expenses); err != nil {
			return nil, err
		}
		total.Net = total.Income.Sub(total.Expenses)
		byMonth[total.Month] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trend := make([]models.MonthlyTotal, 0, months)
	for i := 0; i < months; i++ {
		month := addMonths(startMonth+"-01", i)[:7]
		if total, ok := byMonth[month]; ok {
			trend = append(trend, total)
			continue
		}
		trend = append(trend, models.MonthlyTotal{Month: month})
	}
	return trend, nil
}

// CategoryBreakdown totals spending per category for one month.
func (s *AnalyticsService) CategoryBreakdown(ctx context.Context, month string) ([]models.CategoryTotal, error) {
	query := `
		SELECT category_id, category_name, COALESCE(SUM(amount), 0) AS total
		FROM transactions
		WHERE type = 'expense' AND left(date, 7) = $1
		GROUP BY category_id, category_name
		ORDER BY total DESC
	`
	rows, err := s.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var total models.CategoryTotal
		if err := rows.Scan(&total.CategoryID, &total.CategoryName, &total.Total); err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}
