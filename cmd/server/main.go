package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tracepoint/tracker/internal/config"
	"github.com/tracepoint/tracker/internal/handler"
	"github.com/tracepoint/tracker/internal/ratelimit"
	"github.com/tracepoint/tracker/internal/repository"
	"github.com/tracepoint/tracker/internal/service"
	"github.com/tracepoint/tracker/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	blobs, err := storage.New(context.Background(), storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		Region:    cfg.StorageRegion,
		Bucket:    cfg.StorageBucket,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
	})
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	bugRepo := repository.NewBugRepository(db)
	optionRepo := repository.NewOptionRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	projectSvc := service.NewProjectService(projectRepo, bugRepo, blobs,
		cfg.StorageEndpoint, cfg.StorageBucket, logger)
	bugSvc := service.NewBugService(bugRepo, projectRepo, blobs,
		cfg.StorageEndpoint, cfg.StorageBucket, logger)
	optionSvc := service.NewOptionService(optionRepo, bugRepo, projectRepo)

	limiter := ratelimit.New()

	authHandler := handler.NewAuthHandler(authSvc, limiter)
	projectHandler := handler.NewProjectHandler(projectSvc)
	bugHandler := handler.NewBugHandler(bugSvc, limiter, cfg.MaxUploadBytes)
	optionHandler := handler.NewOptionHandler(optionSvc)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewAppValidator()

	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	// Auth routes (public)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Protected routes
	protected := api.Group("", handler.JWTAuth(authSvc), handler.RateLimit(limiter))
	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/projects", projectHandler.List)
	protected.POST("/projects", projectHandler.Create)
	protected.GET("/projects/:id", projectHandler.Get)
	protected.PUT("/projects/:id", projectHandler.Update)
	protected.DELETE("/projects/:id", projectHandler.Delete)

	protected.GET("/projects/:projectID/bugs", bugHandler.List)
	protected.POST("/projects/:projectID/bugs", bugHandler.Create)
	protected.GET("/bugs/:id", bugHandler.Get)
	protected.PUT("/bugs/:id", bugHandler.Update)
	protected.DELETE("/bugs/:id", bugHandler.Delete)
	protected.POST("/bugs/:id/attachments", bugHandler.UploadAttachments)
	protected.DELETE("/bugs/:id/attachments/:name", bugHandler.RemoveAttachment)

	protected.GET("/projects/:projectID/options/:category", optionHandler.List)
	protected.POST("/projects/:projectID/options/:category", optionHandler.Add)
	protected.DELETE("/projects/:projectID/options/:category", optionHandler.Remove)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.UploadTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
