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

	"golang.org/x/sync/errgroup"

	"github.com/site19/containment-backend/internal/config"
	"github.com/site19/containment-backend/internal/db"
	"github.com/site19/containment-backend/internal/handlers"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/middleware"
	"github.com/site19/containment-backend/internal/observability"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/server"
	"github.com/site19/containment-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "containment-backend",
		Environment: logMode,
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	chamberRepo := repos.NewChamberRepo(thePG, log)
	objectRepo := repos.NewObjectRepo(thePG, log)

	// Services
	log.Info("Setting up services...")
	avatarService, err := services.NewAvatarService(log, cfg.AvatarDir, cfg.AvatarFont)
	if err != nil {
		log.Fatal("Could not init AvatarService", "error", err)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	userService := services.NewUserService(thePG, log, userRepo)
	chamberService := services.NewChamberService(thePG, log, chamberRepo, objectRepo)
	objectService := services.NewObjectService(thePG, log, objectRepo, chamberRepo)

	// Handlers + middleware
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userService)
	chamberHandler := handlers.NewChamberHandler(log, chamberService)
	objectHandler := handlers.NewObjectHandler(log, objectService, chamberService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	avatarDir := cfg.AvatarDir
	if !avatarService.Enabled() {
		avatarDir = ""
	}
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		ChamberHandler: chamberHandler,
		ObjectHandler:  objectHandler,
		AuthMiddleware: authMiddleware,
		CORSOrigins:    cfg.CORSOrigins,
		AvatarDir:      avatarDir,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	// Expired session rows are dead weight once their JWT can no longer
	// verify; sweep them periodically.
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if removed, err := userTokenRepo.DeleteExpired(gctx, nil, time.Now()); err != nil {
					log.Warn("Expired session sweep failed", "error", err)
				} else if removed > 0 {
					log.Info("Expired sessions removed", "count", removed)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	log.Info("Server stopped")
}
