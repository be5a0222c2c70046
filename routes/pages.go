package routes

import (
	"embed"
	"html/template"
	"net/http"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses the embedded page templates.
func LoadTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// RegisterPageRoutes mounts the two public HTML pages.
func RegisterPageRoutes(router *gin.Engine, db *database.Database, appName string, statsService services.StatsServiceInterface, taskService services.TaskServiceInterface) {
	router.GET("/", func(c *gin.Context) { HomePage(c, db, appName, statsService) })
	router.GET("/tasks/", func(c *gin.Context) { TaskListPage(c, db, appName, taskService) })
}

func HomePage(c *gin.Context, db *database.Database, appName string, statsService services.StatsServiceInterface) {
	stats, err := statsService.GetStats(db, "")
	if err != nil {
		logger.Error("Failed to load home page counts", "error", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"AppName":    appName,
		"TotalUsers": stats.TotalUsers,
		"TotalTasks": stats.TotalTasks,
	})
}

func TaskListPage(c *gin.Context, db *database.Database, appName string, taskService services.TaskServiceInterface) {
	tasks, err := taskService.GetAllTasks(db)
	if err != nil {
		logger.Error("Failed to load task list page", "error", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.HTML(http.StatusOK, "tasks.html", gin.H{
		"AppName": appName,
		"Tasks":   tasks,
	})
}
