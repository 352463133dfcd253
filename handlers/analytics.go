package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fintrackhq/fintrack-api/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

func (h *AnalyticsHandler) MonthlyTrend(c *gin.Context) {
	endMonth := c.Query("end_month")
	if endMonth == "" {
		endMonth = time.Now().UTC().Format("2006-01")
	} else if _, err := time.Parse("2006-01", endMonth); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_month must be YYYY-MM"})
		return
	}
	months, err := strconv.Atoi(c.DefaultQuery("months", "12"))
	if err != nil || months < 1 || months > 36 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 36"})
		return
	}

	trend, err := h.Service.MonthlyTrend(c.Request.Context(), endMonth, months)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trend"})
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *AnalyticsHandler) CategoryBreakdown(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	breakdown, err := h.Service.CategoryBreakdown(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch breakdown"})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
