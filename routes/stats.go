package routes

import (
	"net/http"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

func RegisterStatsRoutes(group *gin.RouterGroup, db *database.Database, statsService services.StatsServiceInterface) {
	group.GET("/stats/", middleware.AccessControlMiddleware(middleware.IsAuthenticated), func(c *gin.Context) {
		GetStats(c, db, statsService)
	})
}

func GetStats(c *gin.Context, db *database.Database, statsService services.StatsServiceInterface) {
	identity, _ := middleware.GetIdentity(c)

	stats, err := statsService.GetStats(db, identity.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
