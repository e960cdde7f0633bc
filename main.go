package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/lockedin-be/internal/api"
	"github.com/isdelr/lockedin-be/internal/auth"
	"github.com/isdelr/lockedin-be/internal/config"
	"github.com/isdelr/lockedin-be/internal/database"
	"github.com/isdelr/lockedin-be/internal/jobs"
	"github.com/isdelr/lockedin-be/internal/logger"
	"github.com/isdelr/lockedin-be/internal/progress"
	"github.com/isdelr/lockedin-be/internal/services"
	"github.com/isdelr/lockedin-be/internal/websocket"
)

var CLI struct {
	EnvFile string `help:"Optional .env file loaded before the environment." default:".env" type:"path"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations and exit."`
	Seed    SeedCmd    `cmd:"" help:"Create the demo account."`
}

// appContext is handed to every command's Run.
type appContext struct {
	cfg *config.Config
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("lockedin"),
		kong.Description("LockedIn habit tracker backend"),
		kong.UsageOnError(),
	)

	// Load configuration
	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, File: cfg.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(&appContext{cfg: cfg}); err != nil {
		log.Fatal().Err(err).Str("command", ctx.Command()).Msg("Command failed")
	}
}

// openDatabase opens the store and brings the schema up to date.
func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// MigrateCmd applies pending migrations.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *appContext) error {
	db, err := openDatabase(app.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.Version(db)
	if err != nil {
		return err
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Str("path", app.cfg.DatabasePath).Msg("Database is up to date")
	return nil
}

// SeedCmd creates the demo account.
type SeedCmd struct{}

func (c *SeedCmd) Run(app *appContext) error {
	db, err := openDatabase(app.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	activity := services.NewActivityService(db)
	habits := services.NewHabitService(db, services.OwnershipEnforce, activity, nil)
	presets := services.NewPresetService(habits)
	users := services.NewUserService(db, presets, false, activity)

	user, err := services.SeedDemo(context.Background(), db, users, presets)
	if err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Str("username", services.DemoUsername).Msg("Demo account ready")
	return nil
}

// ServeCmd runs the HTTP server until SIGINT or SIGTERM.
type ServeCmd struct{}

func (c *ServeCmd) Run(app *appContext) error {
	cfg := app.cfg

	policy, err := services.ParseOwnershipPolicy(cfg.HabitDeleteOwnership)
	if err != nil {
		return err
	}
	clock, err := progress.NewDayClock(cfg.Timezone)
	if err != nil {
		return err
	}

	// Set up database
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Set up services
	activity := services.NewActivityService(db)
	habits := services.NewHabitService(db, policy, activity, hub)
	completions := services.NewCompletionService(db, activity, hub)
	days := services.NewDayService(db, cfg.DayCloseGuard, activity, hub)
	presets := services.NewPresetService(habits)
	users := services.NewUserService(db, presets, cfg.SeedDefaultHabits, activity)

	limiter := api.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	// Set up and run the background scheduler
	scheduler, err := jobs.NewScheduler(completions, limiter, clock, jobs.Options{
		Schedule:      cfg.MaintenanceSchedule,
		RetentionDays: cfg.CompletionRetentionDays,
	})
	if err != nil {
		return err
	}
	scheduler.Start()

	// Set up router
	router := api.NewRouter(api.Deps{
		Users:        users,
		Habits:       habits,
		Completions:  completions,
		Days:         days,
		Leaderboard:  services.NewLeaderboardService(db),
		Activity:     activity,
		Export:       services.NewExportService(db),
		Presets:      presets,
		Hub:          hub,
		Tokens:       auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Clock:        clock,
		DB:           db,
		AuthLimiter:  limiter,
		Origins:      cfg.Origins(),
		SecureCookie: cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		scheduler.Stop()
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}
