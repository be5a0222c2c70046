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

// RegisterUserRoutes mounts the user collection and detail endpoints.
// signupLimit guards anonymous signups.
func RegisterUserRoutes(group *gin.RouterGroup, db *database.Database, userService services.UserServiceInterface, pager Paginator, signupLimit gin.HandlerFunc) {
	collection := middleware.AccessControlMiddleware(middleware.AllowAnonymousCreate)
	detail := middleware.AccessControlMiddleware(middleware.IsAuthenticated)

	group.GET("/users/", collection, func(c *gin.Context) { GetUsers(c, db, userService, pager) })
	group.POST("/users/", collection, signupLimit, func(c *gin.Context) { CreateUser(c, db, userService) })
	group.GET("/users/:id/", detail, func(c *gin.Context) { GetUserById(c, db, userService) })
	group.PUT("/users/:id/", detail, func(c *gin.Context) { UpdateUser(c, db, userService, false) })
	group.PATCH("/users/:id/", detail, func(c *gin.Context) { UpdateUser(c, db, userService, true) })
	group.DELETE("/users/:id/", detail, func(c *gin.Context) { DeleteUser(c, db, userService) })
}

func CreateUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	var req models.UserCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := userService.CreateUser(db, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewUserResponse(user))
}

func GetUsers(c *gin.Context, db *database.Database, userService services.UserServiceInterface, pager Paginator) {
	page, ok := pager.Request(c)
	if !ok {
		return
	}

	fields := make(map[string][]string)
	filter := models.UserFilter{
		Search:      c.Query("search"),
		IsStaff:     parseBoolQuery(c, "is_staff", fields),
		IsSuperuser: parseBoolQuery(c, "is_superuser", fields),
		IsActive:    parseBoolQuery(c, "is_active", fields),
		Created:     parseCreatedRange(c, fields),
	}
	if len(fields) > 0 {
		respondValidation(c, fields)
		return
	}

	users, total, err := userService.GetUsers(db, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	if OutOfRange(page, total) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
		return
	}

	c.JSON(http.StatusOK, NewPage(c, page, total, models.NewUserResponses(users)))
}

func GetUserById(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	user, err := userService.GetUserById(db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

func UpdateUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface, partial bool) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var req models.UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := userService.UpdateUser(db, id, req, partial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

func DeleteUser(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := userService.DeleteUser(db, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func userIDParam(c *gin.Context) (uint, bool) {
	return idParam(c, services.ErrUserNotFound)
}

// idParam parses the :id segment. Anything that is not a positive integer
// cannot name a row, so it is reported as notFound.
func idParam(c *gin.Context, notFound error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, notFound)
		return 0, false
	}
	return uint(id), true
}
