package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ArowuTest/raffle-backend/api/routes"
	"github.com/ArowuTest/raffle-backend/internal/config"
	"github.com/ArowuTest/raffle-backend/internal/handlers"
	"github.com/ArowuTest/raffle-backend/internal/repositories"
	boltrepo "github.com/ArowuTest/raffle-backend/internal/repositories/bolt"
	"github.com/ArowuTest/raffle-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/raffle-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/ArowuTest/raffle-backend/pkg/mongodb"
	"github.com/ArowuTest/raffle-backend/pkg/transfergateway"
)

const shutdownTimeout = 5 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer closeStore()
	logger.WithField("driver", cfg.Storage.Driver).Info("Store opened")

	// Initialize services
	clock := services.SystemClock{}
	lotteryService := services.NewLotteryService(store, services.LotteryConfig{
		ContractID:    cfg.Lottery.ContractID,
		RoundDuration: cfg.Lottery.RoundDuration,
		MinTickets:    cfg.Lottery.MinTickets,
		MinPlayers:    cfg.Lottery.MinPlayers,
	}, clock, services.NewSeededSource(cfg.Lottery.RandomSeed), logger)
	gateway := transfergateway.New(cfg.Transfer.BaseURL, cfg.Transfer.APIKey, cfg.Transfer.MockAPI)
	payoutService := services.NewPayoutService(store, store.Transfers(), gateway, clock, logger)
	eventService := services.NewEventService(store.Events())

	handlerDeps := routes.HandlerDependencies{
		LotteryHandler: handlers.NewLotteryHandler(lotteryService),
		PayoutHandler:  handlers.NewPayoutHandler(payoutService),
		EventHandler:   handlers.NewEventHandler(eventService),
		HealthHandler:  handlers.NewHealthHandler(lotteryService),
	}
	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	router := routes.SetupRouter(cfg, handlerDeps, tokens, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exiting")
}

// openStore opens the configured backend. The returned func releases it.
func openStore(cfg *config.Config) (repositories.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		return store, func() {}, nil
	case config.StorageBolt:
		store, err := boltrepo.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close(context.Background()) }, nil
	case config.StorageMongoDB:
		client, err := mongodb.NewClient(cfg.MongoDB.URI)
		if err != nil {
			return nil, nil, err
		}
		store := mongorepo.NewStore(client.Database(cfg.MongoDB.Database))
		return store, func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			client.Disconnect(ctx)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
