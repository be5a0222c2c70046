package testutils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTestGinContext wraps req in a gin context that writes to w, for calling
// handlers directly without a router.
func GetTestGinContext(w http.ResponseWriter, req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}
