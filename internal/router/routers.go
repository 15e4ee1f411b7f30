package router

import (
	"github.com/gin-gonic/gin"
	"github.com/somonity/accounts/config"
	"github.com/somonity/accounts/internal/handler"
	"github.com/somonity/accounts/internal/middleware"
)

type Router struct {
	accountHandler *handler.AccountHandler
	healthHandler  *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	config *config.Config
}

func NewRouter(
	account *handler.AccountHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		accountHandler: account,
		healthHandler:  health,
		jwtMw:          jwtMw,
		config:         config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestContext(r.config.App.Timeout))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.Health)

		v1 := api.Group("/v1")
		{
			r.accountRoutes(v1)
		}
	}

	return router
}
