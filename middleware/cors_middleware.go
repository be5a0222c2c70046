package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
)

// CORSMiddleware allows cross-origin API calls from the configured origins.
// A "*" entry allows any origin; credentials are then disabled.
func CORSMiddleware(appOrigins string) gin.HandlerFunc {
	origins := make([]string, 0)
	for _, origin := range strings.Split(appOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, []string{
		"Accept",
		"Authorization",
		"Accept-Encoding",
		"X-Requested-With",
	}...)

	if len(origins) == 0 || contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
		return cors.New(corsConfig)
	}

	corsConfig.AllowOrigins = origins
	corsConfig.AllowWildcard = true
	corsConfig.AllowCredentials = true
	return cors.New(corsConfig)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
