package routes

import (
	"net/http"
	"time"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

// RegisterDebugRoutes exposes outbox state to staff users.
func RegisterDebugRoutes(group *gin.RouterGroup, db *database.Database, eventService services.EventServiceInterface) {
	debugGroup := group.Group("/debug", middleware.AccessControlMiddleware(middleware.IsStaff))
	{
		debugGroup.GET("/event-queue", func(c *gin.Context) {
			events, err := eventService.GetPendingEvents(db)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"pending_events": len(events),
				"events":         events,
				"time":           time.Now(),
			})
		})
	}
}
