package services

import (
	"testing"

	"github.com/fintrackhq/fintrack-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upsertRequest() *models.RecurringUpsertRequest {
	return &models.RecurringUpsertRequest{
		Name:         "  Netflix  ",
		Amount:       decimal.NewFromFloat(17.99),
		Type:         models.TypeExpense,
		CategoryID:   "subscriptions",
		CategoryName: "Subscriptions",
		OwnerType:    models.OwnerTypeShared,
		Frequency:    models.FrequencyMonthly,
		StartDate:    "2026-01-28",
	}
}

func TestNormalizeRecurringInput(t *testing.T) {
	series, err := normalizeRecurringInput(upsertRequest())
	require.NoError(t, err)

	assert.Equal(t, "Netflix", series.Name, "name is trimmed")
	assert.Equal(t, 28, series.AnchorDay, "anchor defaults to the start date's day")
	assert.Equal(t, models.RecurringStatusActive, series.Status, "status defaults to active")
	assert.Nil(t, series.EndDate)
}

func TestNormalizeRecurringInputAnchorClamping(t *testing.T) {
	req := upsertRequest()
	anchor := 45
	req.AnchorDay = &anchor

	series, err := normalizeRecurringInput(req)
	require.NoError(t, err)
	assert.Equal(t, 1, series.AnchorDay)
}

func TestNormalizeRecurringInputNegativeAmount(t *testing.T) {
	req := upsertRequest()
	req.Amount = decimal.NewFromInt(-50)

	series, err := normalizeRecurringInput(req)
	require.NoError(t, err)
	assert.True(t, series.Amount.IsZero())
}

func TestNormalizeRecurringInputUnknownFrequency(t *testing.T) {
	req := upsertRequest()
	req.Frequency = "fortnightly"

	series, err := normalizeRecurringInput(req)
	require.NoError(t, err)
	assert.Equal(t, models.FrequencyMonthly, series.Frequency)
}

func TestNormalizeRecurringInputDateValidation(t *testing.T) {
	req := upsertRequest()
	req.StartDate = "01/28/2026"
	_, err := normalizeRecurringInput(req)
	assert.Error(t, err)

	req = upsertRequest()
	end := "2025-12-31"
	req.EndDate = &end
	_, err = normalizeRecurringInput(req)
	assert.Error(t, err, "start after end must be rejected")

	req = upsertRequest()
	empty := ""
	req.EndDate = &empty
	series, err := normalizeRecurringInput(req)
	require.NoError(t, err)
	assert.Nil(t, series.EndDate, "empty end date means open-ended")
}

func TestExceptionID(t *testing.T) {
	assert.Equal(t, "series-1_2026-03-15_pause",
		exceptionID("series-1", "2026-03-15", models.ExceptionPauseSkip))
	assert.Equal(t, "series-1_2026-03-15_manual",
		exceptionID("series-1", "2026-03-15", models.ExceptionManualDelete))
}
