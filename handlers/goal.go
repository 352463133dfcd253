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

type GoalHandler struct {
	Service *services.GoalService
	WS      *WSHandler
}

func NewGoalHandler(service *services.GoalService, ws *WSHandler) *GoalHandler {
	return &GoalHandler{Service: service, WS: ws}
}

func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.Service.List(c.Request.Context())
	if err != nil {
		log.Printf("Error listing goals: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goals"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (h *GoalHandler) Create(c *gin.Context) {
	var req models.GoalUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.Service.Create(c.Request.Context(), &req)
	if err != nil {
		log.Printf("Error creating goal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
		return
	}

	h.WS.BroadcastUpdate("goals", "created")
	c.JSON(http.StatusCreated, goal)
}

func (h *GoalHandler) Update(c *gin.Context) {
	var req models.GoalUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.Service.Update(c.Request.Context(), c.Param("id"), &req)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		return
	}
	if err != nil {
		log.Printf("Error updating goal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
		return
	}

	h.WS.BroadcastUpdate("goals", "updated")
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		log.Printf("Error deleting goal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete goal"})
		return
	}

	h.WS.BroadcastUpdate("goals", "deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

func (h *GoalHandler) AddFunds(c *gin.Context) {
	var req models.AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.Service.AddFunds(c.Request.Context(), c.Param("id"), req.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		return
	}
	if err != nil {
		log.Printf("Error adding funds to goal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add funds"})
		return
	}

	h.WS.BroadcastUpdate("goals", "updated")
	c.JSON(http.StatusOK, goal)
}
