package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-activity-api/internal/handler"
	"github.com/noah-isme/sma-activity-api/internal/middleware"
	"github.com/noah-isme/sma-activity-api/internal/service"
	"github.com/noah-isme/sma-activity-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-activity-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-activity-api/pkg/middleware/requestid"
)

// Config controls route registration.
type Config struct {
	APIPrefix      string
	AuthRequired   bool
	EnableDocs     bool
	AllowedOrigins []string
}

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Events        *handler.EventHandler
	Registrations *handler.RegistrationHandler
	Notifications *handler.NotificationHandler
	Points        *handler.PointsHandler
	Metrics       *handler.MetricsHandler
}

// New builds the gin engine with the middleware chain and every route.
func New(cfg Config, h Handlers, tokens middleware.TokenValidator, metrics *service.MetricsService, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())
	if tokens != nil {
		r.Use(middleware.OptionalJWT(tokens))
	}

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.EnableDocs {
		r.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)

	protected := api.Group("")
	if cfg.AuthRequired && tokens != nil {
		protected.Use(middleware.JWT(tokens))
	}

	users := protected.Group("/users")
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	events := protected.Group("/events")
	events.GET("", h.Events.List)
	events.POST("", h.Events.Create)
	events.PUT("/:id", h.Events.Update)
	events.DELETE("/:id", h.Events.Delete)

	registrations := protected.Group("/registrations")
	registrations.GET("", h.Registrations.List)
	registrations.POST("/:id/register", h.Registrations.Register)
	registrations.PUT("/:id/attendance", h.Registrations.RecordAttendance)
	registrations.DELETE("/:id", h.Registrations.Remove)

	notifications := protected.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.POST("", h.Notifications.Create)
	notifications.POST("/broadcast", h.Notifications.Broadcast)
	notifications.PUT("/:id/read", h.Notifications.MarkRead)

	points := protected.Group("/points")
	points.GET("/history", h.Points.History)
	points.POST("/history", h.Points.Record)
	points.GET("/history/export", h.Points.Export)
	points.GET("/student/:student_id/total", h.Points.StudentTotal)

	return r
}
