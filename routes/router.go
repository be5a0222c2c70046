package routes

import (
	"time"

	"taskdesk/taskdesk/config"
	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the service implementations the HTTP layer calls.
type Services struct {
	Auth   services.AuthServiceInterface
	Users  services.UserServiceInterface
	Tasks  services.TaskServiceInterface
	Stats  services.StatsServiceInterface
	Events services.EventServiceInterface
}

// SetupRouter builds the gin engine with every API, page and operational
// route. limiter may be nil, which disables rate limiting.
func SetupRouter(cfg config.Config, db *database.Database, svc Services, limiter *middleware.RedisRateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.SetHTMLTemplate(LoadTemplates())

	RegisterHealthRoutes(router, NewHealthHandler(db, cfg.AppName))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterPageRoutes(router, db, cfg.AppName, svc.Stats, svc.Tasks)

	authWindow := time.Duration(cfg.AuthRateWindowSeconds) * time.Second
	authLimit := limiter.Limit(cfg.AuthRateLimit, authWindow)

	pager := Paginator{PageSize: cfg.PageSize, MaxPageSize: cfg.MaxPageSize}

	api := router.Group("/api", middleware.AuthMiddleware(db, svc.Auth))
	{
		RegisterAuthRoutes(api, db, svc.Auth, authLimit)
		RegisterUserRoutes(api, db, svc.Users, pager, authLimit)
		RegisterTaskRoutes(api, db, svc.Tasks, pager)
		RegisterStatsRoutes(api, db, svc.Stats)
		RegisterDebugRoutes(api, db, svc.Events)
	}

	return router
}
