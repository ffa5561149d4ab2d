// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"finhub/internal/config"
	_ "finhub/internal/docs" // registers the OpenAPI document
	"finhub/internal/handlers"
	"finhub/internal/middleware"
	"finhub/internal/services"
)

// Deps are the long-lived components the router is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Tokens *middleware.TokenManager
	Bank   handlers.BankClient
}

// NewRouter wires services and handlers onto a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	db := deps.DB

	// Initialize services
	userService := services.NewUserService(db)
	goalService := services.NewGoalService(db)
	transactionService := services.NewTransactionService(db)
	billService := services.NewBillService(db)
	balanceService := services.NewBalanceService(db)
	analyticsService := services.NewAnalyticsService(db, billService)
	adminService := services.NewAdminService(db, cfg.AdminUsername, cfg.AdminPassword)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, deps.Tokens)
	goalHandler := handlers.NewGoalHandler(goalService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	billHandler := handlers.NewBillHandler(billService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	adminHandler := handlers.NewAdminHandler(adminService, deps.Tokens)
	bankHandler := handlers.NewBankHandler(deps.Bank)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	protected.GET("/profile", authHandler.GetProfile)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/details", goalHandler.GetGoalsFullDetails)
	goals.GET("/type/:type", goalHandler.GetGoalsByType)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	bills := protected.Group("/bills")
	bills.POST("", billHandler.CreateBill)
	bills.GET("", billHandler.GetUserBills)
	bills.GET("/upcoming", billHandler.GetUpcomingBills)
	bills.GET("/:id", billHandler.GetBillByID)
	bills.PATCH("/:id", billHandler.UpdateBill)
	bills.DELETE("/:id", billHandler.DeleteBill)
	bills.POST("/:id/pay", billHandler.MarkBillPaid)

	balances := protected.Group("/balances")
	balances.PUT("", balanceHandler.UpsertBalance)
	balances.GET("", balanceHandler.ListBalances)
	balances.GET("/:year/:month", balanceHandler.GetBalance)
	balances.DELETE("/:year/:month", balanceHandler.DeleteBalance)

	analytics := protected.Group("/analytics")
	analytics.GET("/summary", analyticsHandler.GetSummary)
	analytics.GET("/balance-trend", analyticsHandler.GetBalanceTrend)
	analytics.GET("/cash-flow", analyticsHandler.GetCashFlow)

	bank := protected.Group("/bank/:scope")
	bank.GET("/accounts", bankHandler.GetAccounts)
	bank.GET("/accounts/:accountId", bankHandler.GetAccount)
	bank.GET("/bills", bankHandler.GetBills)

	// Admin panel
	v1.POST("/admin/login", adminHandler.Login)
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(deps.Tokens))
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.GET("/goals", adminHandler.ListGoals)
	admin.GET("/goals/:id", adminHandler.GetGoal)
	admin.GET("/transactions", adminHandler.ListTransactions)
	admin.GET("/transactions/export", adminHandler.ExportTransactions)
	admin.GET("/transactions/:id", adminHandler.GetTransaction)
	admin.GET("/bills", adminHandler.ListBills)
	admin.GET("/bills/:id", adminHandler.GetBill)
	admin.GET("/balances", adminHandler.ListBalances)
	admin.GET("/balances/:id", adminHandler.GetBalance)

	return router
}
