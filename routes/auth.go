package routes

import (
	"net/http"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func RegisterAuthRoutes(group *gin.RouterGroup, db *database.Database, authService services.AuthServiceInterface, loginLimit gin.HandlerFunc) {
	group.POST("/auth/login/", loginLimit, func(c *gin.Context) { Login(c, db, authService) })
}

func Login(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var request loginRequest
	if !bindJSON(c, &request) {
		return
	}

	token, err := authService.Login(db, request.Username, request.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token})
}
