package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clinica-agenda-api/internal/config"
	"clinica-agenda-api/internal/handler"
	"clinica-agenda-api/internal/middleware"
	"clinica-agenda-api/internal/model"
	"clinica-agenda-api/internal/schedule"
	"clinica-agenda-api/internal/store"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "agenda-server",
		Short: "Medical office scheduling API",
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduling API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cal := handler.CalendarConfig{
		OpeningHour:    cfg.OpeningHour,
		ClosingHour:    cfg.ClosingHour,
		SlotMinutes:    cfg.SlotMinutes,
		WeekStartsOn:   cfg.WeekStart(),
		MonthMaxPerDay: cfg.MonthMaxPerDay,
	}

	var (
		h  *handler.Handler
		mw handler.Middlewares
	)

	if cfg.DemoMode() {
		logger.Warn().Msg("no DATABASE_URL: running in demo mode on seeded in-memory data, auth disabled")

		book := schedule.NewBook(cfg.ConflictPolicy())
		if err := schedule.SeedDemo(book); err != nil {
			return fmt.Errorf("seed demo book: %w", err)
		}
		mem := store.NewMemory(book, model.DemoPatients())
		h = handler.New(mem, mem, nil, "", cal)
	} else {
		ctx := context.Background()
		pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()
		logger.Info().Msg("connected to postgres")

		if err := applyMigrations(ctx, pool, logger); err != nil {
			return err
		}

		st := store.New(pool, cfg.ConflictPolicy())
		h = handler.New(st, st, st, cfg.JWTSecret, cal)
		mw.Auth = middleware.Auth(cfg.JWTSecret)
		mw.RateLimit = middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	h.RegisterRoutes(e, mw)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server stopped")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DemoMode() {
				return fmt.Errorf("DATABASE_URL is required to migrate")
			}

			ctx := context.Background()
			pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("db: %w", err)
			}
			defer pool.Close()

			return applyMigrations(ctx, pool, logger)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo patients and appointments into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DemoMode() {
				return fmt.Errorf("DATABASE_URL is required to seed")
			}

			ctx := context.Background()
			pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("db: %w", err)
			}
			defer pool.Close()

			st := store.New(pool, cfg.ConflictPolicy())
			for _, p := range model.DemoPatients() {
				p := p
				if err := st.CreatePatient(ctx, &p); err != nil {
					logger.Warn().Err(err).Str("patient", p.ID).Msg("seed patient skipped")
				}
			}

			book := schedule.NewBook(cfg.ConflictPolicy())
			if err := schedule.SeedDemo(book); err != nil {
				return err
			}
			for _, a := range book.ListRange("0000-01-01", "9999-12-31") {
				a.ID = "" // store assigns fresh ids
				if _, err := st.Create(ctx, a); err != nil {
					logger.Warn().Err(err).Str("date", a.Date).Str("start", a.StartTime).Msg("seed appointment skipped")
				}
			}
			logger.Info().Msg("seed complete")
			return nil
		},
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	migration, err := os.ReadFile("db/migrations/001_init.sql")
	if err != nil {
		logger.Warn().Err(err).Msg("migration file not found, skipping")
		return nil
	}
	if _, err := pool.Exec(ctx, string(migration)); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	logger.Info().Msg("migration applied")
	return nil
}
