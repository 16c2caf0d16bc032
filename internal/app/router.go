package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"trike/internal/handler"
	"trike/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler      *handler.BookingHandler
	DriverHandler       *handler.DriverHandler
	RiderHandler        *handler.RiderHandler
	AdminHandler        *handler.AdminHandler
	NotificationHandler *handler.NotificationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Rider routes.
		riders := v1.Group("/riders")
		{
			riders.POST("/register", deps.RiderHandler.Register)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.BookingHandler.CreateRide)
			rides.GET("", deps.BookingHandler.ListRides)
			rides.GET("/:id", deps.BookingHandler.GetRide)
			rides.POST("/:id/cancel", deps.BookingHandler.CancelRide)
			rides.POST("/:id/rate", deps.BookingHandler.RateRide)
			rides.POST("/:id/assign", deps.BookingHandler.AssignDriver)
			rides.POST("/:id/reject", deps.BookingHandler.RejectRide)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.List)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.POST("/:id/accept", deps.DriverHandler.AcceptRide)
			drivers.POST("/:id/decline", deps.DriverHandler.DeclineRide)
			drivers.POST("/:id/arrived", deps.DriverHandler.MarkArrived)
			drivers.POST("/:id/start", deps.DriverHandler.StartTrip)
			drivers.POST("/:id/complete", deps.DriverHandler.CompleteTrip)
			drivers.GET("/:id/earnings", deps.DriverHandler.ListEarnings)
		}

		// Dispatch console routes.
		admin := v1.Group("/admin")
		{
			admin.GET("/drivers/nearby", deps.AdminHandler.NearbyDrivers)
			admin.GET("/tariff", deps.AdminHandler.GetTariff)
			admin.PUT("/tariff", deps.AdminHandler.UpdateTariff)
		}

		// Notification poll.
		v1.GET("/notifications", deps.NotificationHandler.Poll)
	}

	return router
}
