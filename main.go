package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicle_parking/internal/api"
	"vehicle_parking/internal/api/handler"
	"vehicle_parking/internal/api/middleware"
	"vehicle_parking/internal/config"
	"vehicle_parking/internal/logger"
	"vehicle_parking/internal/repository/postgresql"
	"vehicle_parking/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV") == "production"); err != nil {
		panic(err)
	}
	log := logger.L()
	defer log.Sync()

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("database connection established")

	if err := postgresql.Migrate(cfg); err != nil {
		log.Fatal("could not apply migrations", zap.Error(err))
	}
	log.Info("migrations applied")

	userRepo := postgresql.NewPgUserRepository(db)
	lotRepo := postgresql.NewPgParkingLotRepository(db)
	spotRepo := postgresql.NewPgParkingSpotRepository(db)
	resRepo := postgresql.NewPgReservationRepository(db)
	txManager := postgresql.NewTxManager(db)

	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	parkingService := service.NewParkingService(lotRepo, spotRepo, userRepo, resRepo, txManager)
	allocationService := service.NewAllocationService(lotRepo, spotRepo, userRepo, resRepo, txManager, webSocketManager)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(seedCtx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		cancelSeed()
		log.Fatal("could not seed admin account", zap.Error(err))
	}
	cancelSeed()

	authMiddleware := middleware.NewAuthMiddleware(authService)
	router := api.SetupRouter(authService, parkingService, allocationService, authMiddleware, webSocketManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shut down", zap.Error(err))
	}
	log.Info("server stopped")
}
