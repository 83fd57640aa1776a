package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"github.com/BruksfildServices01/opsdesk/internal/httperr"
)

// CORSMiddleware answers preflights for the configured origins only. Tokens
// travel in the Authorization header, so credentials are never allowed.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		// cors reads an empty list as "*"
		return func(c *gin.Context) { c.Next() }
	}

	handler := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{httperr.HeaderAuditWarning, httperr.HeaderCommittedCount},
		MaxAge:         300,
	})

	return func(c *gin.Context) {
		passed := false
		handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		// preflight: cors already wrote the response
		if !passed {
			c.Abort()
		}
	}
}
