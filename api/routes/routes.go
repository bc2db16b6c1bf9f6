package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ArowuTest/raffle-backend/internal/config"
	"github.com/ArowuTest/raffle-backend/internal/handlers"
	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/middleware"
)

// HandlerDependencies holds the handlers the router serves
type HandlerDependencies struct {
	LotteryHandler *handlers.LotteryHandler
	PayoutHandler  *handlers.PayoutHandler
	EventHandler   *handlers.EventHandler
	HealthHandler  *handlers.HealthHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies, verifier middleware.IdentityVerifier, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Add middleware
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(metrics.GinMiddleware())

	router.GET("/health", deps.HealthHandler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	lotteryHandler := deps.LotteryHandler

	// Public routes
	public := router.Group("/api/v1")
	{
		lottery := public.Group("/lottery")
		{
			lottery.GET("/phase", lotteryHandler.GetPhase)
			lottery.GET("/state", lotteryHandler.GetState)
			lottery.GET("/ticket-price", lotteryHandler.GetTicketPrice)
			lottery.GET("/rounds", lotteryHandler.ListRounds)
			lottery.GET("/rounds/:id", lotteryHandler.GetRound)
			lottery.GET("/players/:player/tickets", lotteryHandler.GetPlayerTickets)
			lottery.GET("/events", deps.EventHandler.ListEvents)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(verifier, logger))
	{
		lottery := protected.Group("/lottery")
		{
			lottery.POST("/init", lotteryHandler.Init)
			lottery.POST("/rounds/start", lotteryHandler.StartRound)
			lottery.POST("/tickets", lotteryHandler.BuyTicket)
			lottery.POST("/draw", lotteryHandler.DrawWinner)
			lottery.POST("/settle", lotteryHandler.SettlePayout)
			lottery.PUT("/ticket-price", lotteryHandler.SetTicketPrice)
		}

		payouts := protected.Group("/payouts")
		{
			payouts.GET("", deps.PayoutHandler.ListTransfers)
			payouts.POST("/dispatch", deps.PayoutHandler.Dispatch)
			payouts.POST("/confirm", deps.PayoutHandler.Confirm)
		}
	}

	return router
}
