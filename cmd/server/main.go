// Package main is the entry point for the lottery service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lotto-service/internal/config"
	"lotto-service/internal/handler"
	"lotto-service/internal/pkg/db"
	"lotto-service/internal/pkg/rng"
	"lotto-service/internal/repository"
	"lotto-service/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	log.Info().Msg("Running database migrations...")
	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	if cfg.Lottery.SeedPrizeTiers {
		if err := db.SeedPrizeTiers(ctx, dbPool.Pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed prize tiers")
		}
	}
	log.Info().Msg("All migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	ticketRepo := repository.NewTicketRepository(dbPool.Pool)
	purchaseRepo := repository.NewPurchaseRepository(dbPool.Pool)
	drawRepo := repository.NewDrawRepository(dbPool.Pool)
	prizeRepo := repository.NewPrizeRepository(dbPool.Pool)
	walletRepo := repository.NewWalletRepository(dbPool.Pool)
	redemptionRepo := repository.NewRedemptionRepository(dbPool.Pool)

	// Initialize services
	accountService := service.NewAccountService(dbPool.Pool, userRepo, walletRepo, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost)
	ticketService := service.NewTicketService(ticketRepo, purchaseRepo, cfg.Lottery.TicketPrice)
	purchaseService := service.NewPurchaseService(dbPool.Pool, ticketRepo, purchaseRepo, walletRepo)
	drawService := service.NewDrawService(dbPool.Pool, drawRepo, ticketRepo, prizeRepo, rng.NewSource())
	redemptionService := service.NewRedemptionService(dbPool.Pool, purchaseRepo, redemptionRepo, walletRepo)
	walletService := service.NewWalletService(walletRepo, cfg.Lottery.HistoryLimit)
	prizeService := service.NewPrizeService(prizeRepo)

	// Initialize HTTP handlers and router
	h := handler.New(
		accountService,
		ticketService,
		purchaseService,
		drawService,
		redemptionService,
		walletService,
		prizeService,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	h.RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Msg("HTTP server starting...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}
