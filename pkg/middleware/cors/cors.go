package cors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// New adapts rs/cors to gin. An empty origin list allows every origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return true }
	}
	c := cors.New(opts)

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)

		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
