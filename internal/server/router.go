package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/site19/containment-backend/internal/handlers"
	"github.com/site19/containment-backend/internal/middleware"
	"github.com/site19/containment-backend/internal/services"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ChamberHandler *handlers.ChamberHandler
	ObjectHandler  *handlers.ObjectHandler
	AuthMiddleware *middleware.AuthMiddleware
	CORSOrigins    []string
	AvatarDir      string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("containment-backend"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	if cfg.AvatarDir != "" {
		router.Static("/avatars", cfg.AvatarDir)
	}

	// Any authenticated actor
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.GET("/objects", cfg.ObjectHandler.List)
	protected.GET("/objects/:id", cfg.ObjectHandler.Get)

	// Admin only
	chambers := protected.Group("/chambers")
	chambers.GET("", cfg.AuthMiddleware.RequirePermission(services.OpChamberList), cfg.ChamberHandler.List)
	chambers.GET("/available", cfg.AuthMiddleware.RequirePermission(services.OpChamberList), cfg.ChamberHandler.ListAvailable)
	chambers.GET("/:id", cfg.AuthMiddleware.RequirePermission(services.OpChamberView), cfg.ChamberHandler.Get)
	chambers.POST("", cfg.AuthMiddleware.RequirePermission(services.OpChamberCreate), cfg.ChamberHandler.Create)
	chambers.PUT("/:id", cfg.AuthMiddleware.RequirePermission(services.OpChamberEdit), cfg.ChamberHandler.Update)
	chambers.DELETE("/:id", cfg.AuthMiddleware.RequirePermission(services.OpChamberDelete), cfg.ChamberHandler.Delete)

	objects := protected.Group("/objects")
	objects.POST("", cfg.AuthMiddleware.RequirePermission(services.OpObjectCreate), cfg.ObjectHandler.Create)
	objects.PUT("/:id", cfg.AuthMiddleware.RequirePermission(services.OpObjectEdit), cfg.ObjectHandler.Update)
	objects.DELETE("/:id", cfg.AuthMiddleware.RequirePermission(services.OpObjectDelete), cfg.ObjectHandler.Delete)

	return router
}
