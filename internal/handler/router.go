package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/ledger"
)

// SetupRouter wires the HTTP surface over the injected engine and account
// service.
func SetupRouter(engine *ledger.Engine, accounts *ledger.AccountService) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(engine, accounts)

	api := r.Group("/api/v1")
	{
		transactions := api.Group("/transactions")
		{
			transactions.POST("", h.CreateMovement)
			transactions.GET("/:id", h.GetTransaction)
			transactions.POST("/:id/reverse", h.ReverseMovement)
		}

		accountRoutes := api.Group("/accounts")
		{
			accountRoutes.POST("", h.OpenAccount)
			accountRoutes.GET("/:id", h.GetAccount)
			accountRoutes.GET("/:id/transactions", h.ListAccountTransactions)
			accountRoutes.GET("/:id/statement", h.GetStatement)
		}

		users := api.Group("/users")
		{
			users.GET("/:id/accounts", h.ListUserAccounts)
			users.GET("/:id/transactions", h.ListUserTransactions)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
