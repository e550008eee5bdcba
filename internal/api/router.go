package api

import (
	"vehicle_parking/internal/api/handler"
	"vehicle_parking/internal/api/middleware"
	"vehicle_parking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(
	as *service.AuthService,
	ps *service.ParkingService,
	alloc *service.AllocationService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		lotH := handler.NewParkingLotHandler(ps)
		resH := handler.NewReservationHandler(alloc)
		lotRoutes := v1.Group("/parking-lots")
		{
			lotRoutes.POST("", authMw.RequireAdmin(), lotH.CreateParkingLot)
			lotRoutes.GET("", lotH.GetAllParkingLots)
			lotRoutes.GET("/:id", lotH.GetParkingLotByID)
			lotRoutes.PUT("/:id", authMw.RequireAdmin(), lotH.UpdateParkingLot)
			lotRoutes.DELETE("/:id", authMw.RequireAdmin(), lotH.DeleteParkingLot)
			lotRoutes.GET("/:id/spots", lotH.GetSpotsByLotID)
			lotRoutes.POST("/:id/reserve", resH.Reserve)
		}

		spotH := handler.NewParkingSpotHandler(ps)
		v1.GET("/parking-spots/:spot_id", spotH.GetParkingSpotByID)

		resRoutes := v1.Group("/reservations")
		{
			resRoutes.POST("/release", resH.Release)
			resRoutes.GET("/current", resH.Current)
			resRoutes.GET("", resH.History)
		}

		adminH := handler.NewAdminHandler(ps, alloc)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(authMw.RequireAdmin())
		{
			adminRoutes.GET("/users", adminH.GetAllUsers)
			adminRoutes.GET("/reservations", adminH.GetAllReservations)
			adminRoutes.GET("/summary", adminH.GetSummary)
		}
	}
	return r
}
