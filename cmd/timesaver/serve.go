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
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"timesaver/backend/internal/db"
	"timesaver/backend/internal/export"
	"timesaver/backend/internal/handler"
	"timesaver/backend/internal/news"
	"timesaver/backend/internal/repository"
	"timesaver/backend/internal/router"
	"timesaver/backend/internal/service"
	"timesaver/backend/internal/weather"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	applied, err := db.RunMigrations(ctx, database, cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", zap.Strings("applied", applied))
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(database)
	entryRepo := repository.NewEntryRepository(database)
	messageRepo := repository.NewMessageRepository(database)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	entryService := service.NewEntryService(entryRepo, loc, logger)
	reportService := service.NewReportService(entryRepo, userRepo, loc, logger)
	messageService := service.NewMessageService(messageRepo, userRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(authService, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Entries:  handler.NewEntryHandler(entryService),
		Reports:  handler.NewReportHandler(reportService, export.NewPDFRenderer(cfg.Export.FontPath, logger), logger),
		Messages: handler.NewMessageHandler(messageService),
		Widgets: handler.NewWidgetHandler(
			weather.NewClient(cfg.Weather, logger),
			news.NewClient(cfg.News, logger),
		),
	}, cfg.CORSOrigins, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("backend listening", zap.String("addr", server.Addr), zap.String("time_zone", loc.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
