package routes

import (
	"net/http"
	"strconv"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

func RegisterTaskRoutes(group *gin.RouterGroup, db *database.Database, taskService services.TaskServiceInterface, pager Paginator) {
	tasks := group.Group("/tasks", middleware.AccessControlMiddleware(middleware.IsAuthenticated))

	tasks.GET("/", func(c *gin.Context) { GetTasks(c, db, taskService, pager) })
	tasks.POST("/", func(c *gin.Context) { CreateTask(c, db, taskService) })
	tasks.GET("/:id/", func(c *gin.Context) { GetTaskById(c, db, taskService) })
	tasks.PUT("/:id/", func(c *gin.Context) { UpdateTask(c, db, taskService, false) })
	tasks.PATCH("/:id/", func(c *gin.Context) { UpdateTask(c, db, taskService, true) })
	tasks.DELETE("/:id/", func(c *gin.Context) { DeleteTask(c, db, taskService) })
}

func CreateTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	// created_by is not part of TaskWriteRequest, so a client-supplied value
	// never reaches the service.
	var req models.TaskWriteRequest
	if !bindJSON(c, &req) {
		return
	}

	identity, _ := middleware.GetIdentity(c)

	task, err := taskService.CreateTask(db, identity.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewTaskResponse(task))
}

func GetTaskById(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	id, ok := idParam(c, services.ErrTaskNotFound)
	if !ok {
		return
	}

	task, err := taskService.GetTaskById(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTaskResponse(task))
}

func UpdateTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface, partial bool) {
	id, ok := idParam(c, services.ErrTaskNotFound)
	if !ok {
		return
	}

	var req models.TaskWriteRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := taskService.UpdateTask(db, id, req, partial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTaskResponse(task))
}

func DeleteTask(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface) {
	id, ok := idParam(c, services.ErrTaskNotFound)
	if !ok {
		return
	}

	if err := taskService.DeleteTask(db, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func GetTasks(c *gin.Context, db *database.Database, taskService services.TaskServiceInterface, pager Paginator) {
	page, ok := pager.Request(c)
	if !ok {
		return
	}

	fields := make(map[string][]string)
	filter := models.TaskFilter{
		Search:    c.Query("search"),
		Completed: parseBoolQuery(c, "completed", fields),
		Created:   parseCreatedRange(c, fields),
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		id, err := strconv.ParseUint(createdBy, 10, 64)
		if err != nil {
			fields["created_by"] = []string{"Select a valid choice. That choice is not one of the available choices."}
		} else {
			creatorID := uint(id)
			filter.CreatedByID = &creatorID
		}
	}
	if len(fields) > 0 {
		respondValidation(c, fields)
		return
	}

	tasks, total, err := taskService.GetTasks(db, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	if OutOfRange(page, total) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
		return
	}

	c.JSON(http.StatusOK, NewPage(c, page, total, models.NewTaskResponses(tasks)))
}
