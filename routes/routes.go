package routes

import (
	"database/sql"

	"github.com/fintrackhq/fintrack-api/handlers"
	"github.com/fintrackhq/fintrack-api/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
}

// SetupTransactionRoutes sets up protected ledger routes.
func SetupTransactionRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := handlers.NewTransactionHandler(services.NewTransactionService(db), ws)

	rg.GET("/transactions", h.List)
	rg.POST("/transactions", h.Create)
	rg.GET("/transactions/summary", h.Summary)
	rg.GET("/transactions/:id", h.Get)
	rg.PUT("/transactions/:id", h.Update)
	rg.DELETE("/transactions/:id", h.Delete)

	rg.GET("/categories", h.ListCategories)
}

// SetupRecurringRoutes sets up protected recurring-series routes.
func SetupRecurringRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := handlers.NewRecurringHandler(services.NewRecurringService(db), ws)

	rg.GET("/recurring", h.List)
	rg.POST("/recurring", h.Create)
	rg.POST("/recurring/sync", h.SyncAll)
	rg.GET("/recurring/stats", h.Stats)
	rg.GET("/recurring/:id", h.Get)
	rg.PUT("/recurring/:id", h.Update)
	rg.DELETE("/recurring/:id", h.Delete)
	rg.POST("/recurring/:id/pause", h.Pause)
	rg.POST("/recurring/:id/resume", h.Resume)
}

// SetupGoalRoutes sets up protected savings-goal routes.
func SetupGoalRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := handlers.NewGoalHandler(services.NewGoalService(db), ws)

	rg.GET("/goals", h.List)
	rg.POST("/goals", h.Create)
	rg.PUT("/goals/:id", h.Update)
	rg.DELETE("/goals/:id", h.Delete)
	rg.POST("/goals/:id/funds", h.AddFunds)
}

// SetupAnalyticsRoutes sets up protected aggregation routes.
func SetupAnalyticsRoutes(rg *gin.RouterGroup, db *sql.DB) {
	h := handlers.NewAnalyticsHandler(services.NewAnalyticsService(db))

	rg.GET("/analytics/trend", h.MonthlyTrend)
	rg.GET("/analytics/categories", h.CategoryBreakdown)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
}
