package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dfryer1193/quill/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether the post store can serve requests
type HealthCheck func(ctx context.Context) error

// NewHealth registers the liveness probe
func NewHealth(router *gin.Engine, check HealthCheck) {
	router.GET("/healthz", func(c *gin.Context) {
		if check == nil {
			c.JSON(http.StatusOK, api.Health{Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := check(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, api.Health{Status: "unavailable", Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, api.Health{Status: "ok"})
	})
}
