package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nfl-pickem-go/config"
	"nfl-pickem-go/database"
	"nfl-pickem-go/handlers"
	"nfl-pickem-go/logging"
	"nfl-pickem-go/middleware"
	"nfl-pickem-go/services"

	"github.com/gorilla/mux"
	"github.com/itbasis/go-clock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Output:      os.Stdout,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.TestConnection(); err != nil {
		logging.Fatalf("Database test failed: %v", err)
	}

	// Repositories
	resultsRepo := database.NewMongoWeeklyResultsRepository(db)
	ledgerRepo := database.NewMongoSeasonLedgerRepository(db)
	userRepo := database.NewMongoUserRepository(db)
	pickRepo := database.NewMongoPickRepository(db)

	// Services
	clk := clock.New()
	cache := services.NewScoreboardCache(clk, cfg.Scoreboard.LiveTTL, cfg.Scoreboard.IdleTTL)
	scoreboard := services.NewScoreboardService(cfg.Scoreboard.BaseURL, cfg.Scoreboard.Timeout, cache)
	winnersService := services.NewWeeklyWinnersService(
		scoreboard, resultsRepo, ledgerRepo, userRepo, pickRepo, clk, cfg.App.MaxWeeks)

	// Scheduled weekly run
	if cfg.App.SchedulerEnabled {
		scheduler, err := services.NewComputeScheduler(
			winnersService, cfg.App.CronSpec, cfg.App.CronTimezone,
			cfg.App.DefaultYear, cfg.App.DefaultSeason)
		if err != nil {
			logging.Fatalf("Failed to create scheduler: %v", err)
		}
		if err := scheduler.Start(); err != nil {
			logging.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Handlers
	computeHandler := handlers.NewComputeHandler(winnersService, resultsRepo, ledgerRepo, handlers.Defaults{
		Year:   cfg.App.DefaultYear,
		Season: cfg.App.DefaultSeason,
		Week:   cfg.App.DefaultWeek,
	})

	// Routes
	r := mux.NewRouter()
	r.Use(middleware.RequestLogging)
	r.HandleFunc("/healthz", computeHandler.Health).Methods("GET")
	r.HandleFunc("/api/compute-week", computeHandler.ComputeWeek).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/weekly-results", computeHandler.GetWeeklyResult).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/leaderboard", computeHandler.GetLeaderboard).Methods("GET", "OPTIONS")

	server := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: r,
	}

	go func() {
		logging.Infof("Server starting on %s", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Errorf("Server shutdown error: %v", err)
	}
}
