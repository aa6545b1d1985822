package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/omerg864/SecuRent-sub001/internal/api/handlers"
	"github.com/omerg864/SecuRent-sub001/internal/api/middleware"
	"github.com/omerg864/SecuRent-sub001/internal/services"
	"github.com/omerg864/SecuRent-sub001/internal/ws"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

type Router struct {
	engine              *gin.Engine
	wsHandler           *handlers.WSHandler
	notificationHandler *handlers.NotificationHandler
	presenceHandler     *handlers.PresenceHandler
	authMW              *middleware.AuthMiddleware
	rateLimitMW         *middleware.RateLimitMiddleware
}

func NewRouter(
	hub *ws.Hub,
	notificationService *services.NotificationService,
	verifier middleware.Verifier,
	limiter middleware.RateLimiter,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Add middlewares
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	return &Router{
		engine:              engine,
		wsHandler:           handlers.NewWSHandler(hub),
		notificationHandler: handlers.NewNotificationHandler(notificationService),
		presenceHandler:     handlers.NewPresenceHandler(hub),
		authMW:              middleware.NewAuthMiddleware(verifier),
		rateLimitMW:         middleware.NewRateLimitMiddleware(limiter),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// WebSocket endpoint; authentication happens at the socket level so
	// clients can also hand their credential over in the first frame.
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	// Authenticated routes
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		notifications := auth.Group("/notifications")
		notifications.Use(r.authMW.RequireRole(models.RoleAdmin))
		notifications.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			notifications.POST("/push", r.notificationHandler.Push)
		}

		presence := auth.Group("/presence")
		presence.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			presence.GET("/stats", r.authMW.RequireRole(models.RoleAdmin), r.presenceHandler.Stats)
			presence.GET("/:role/:id", r.presenceHandler.Get)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
