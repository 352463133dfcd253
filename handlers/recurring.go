package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/fintrackhq/fintrack-api/models"
	"github.com/fintrackhq/fintrack-api/services"

	"github.com/gin-gonic/gin"
)

type RecurringHandler struct {
	Service *services.RecurringService
	WS      *WSHandler
}

func NewRecurringHandler(service *services.RecurringService, ws *WSHandler) *RecurringHandler {
	return &RecurringHandler{Service: service, WS: ws}
}

func (h *RecurringHandler) List(c *gin.Context) {
	series, err := h.Service.List(c.Request.Context())
	if err != nil {
		log.Printf("Error listing recurring series: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recurring transactions"})
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *RecurringHandler) Get(c *gin.Context) {
	series, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recurring transaction not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recurring transaction"})
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *RecurringHandler) Create(c *gin.Context) {
	var req models.RecurringUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, err := h.Service.Create(c.Request.Context(), &req)
	if err != nil {
		log.Printf("Error creating recurring series: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.WS.BroadcastUpdate("recurring", "created")
	h.WS.BroadcastUpdate("transactions", "synced")
	c.JSON(http.StatusCreated, series)
}

func (h *RecurringHandler) Update(c *gin.Context) {
	var req models.RecurringUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, err := h.Service.Update(c.Request.Context(), c.Param("id"), &req)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recurring transaction not found"})
		return
	}
	if err != nil {
		log.Printf("Error updating recurring series: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.WS.BroadcastUpdate("recurring", "updated")
	h.WS.BroadcastUpdate("transactions", "synced")
	c.JSON(http.StatusOK, series)
}

func (h *RecurringHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		log.Printf("Error deleting recurring series: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recurring transaction"})
		return
	}

	h.WS.BroadcastUpdate("recurring", "deleted")
	h.WS.BroadcastUpdate("transactions", "synced")
	c.JSON(http.StatusOK, gin.H{"message": "Recurring transaction deleted"})
}

func (h *RecurringHandler) Pause(c *gin.Context) {
	// Body is optional; an absent date means "pause from today"
	var req models.PauseRecurringRequest
	_ = c.ShouldBindJSON(&req)

	series, err := h.Service.Pause(c.Request.Context(), c.Param("id"), req.PauseFromDate)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recurring transaction not found"})
		return
	}
	if err != nil {
		log.Printf("Error pausing recurring series: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pause recurring transaction"})
		return
	}

	h.WS.BroadcastUpdate("recurring", "paused")
	h.WS.BroadcastUpdate("transactions", "synced")
	c.JSON(http.StatusOK, series)
}

func (h *RecurringHandler) Resume(c *gin.Context) {
	// Body is optional; an absent date means "resume from today"
	var req models.ResumeRecurringRequest
	_ = c.ShouldBindJSON(&req)

	series, err := h.Service.Resume(c.Request.Context(), c.Param("id"), req.ResumeFromDate)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recurring transaction not found"})
		return
	}
	if err != nil {
		log.Printf("Error resuming recurring series: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resume recurring transaction"})
		return
	}

	h.WS.BroadcastUpdate("recurring", "resumed")
	h.WS.BroadcastUpdate("transactions", "synced")
	c.JSON(http.StatusOK, series)
}

func (h *RecurringHandler) SyncAll(c *gin.Context) {
	if err := h.Service.SyncAll(c.Request.Context()); err != nil {
		log.Printf("Error syncing recurring series: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync recurring transactions"})
		return
	}

	h.WS.BroadcastUpdate("transactions", "synced")
	c.JSON(http.StatusOK, gin.H{"message": "Sync complete"})
}

func (h *RecurringHandler) Stats(c *gin.Context) {
	stats, err := h.Service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
