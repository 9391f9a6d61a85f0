package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorTemplate is the page rendered for unexpected failures
const ErrorTemplate = "error.html"

func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}

		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")

		c.HTML(http.StatusInternalServerError, ErrorTemplate, gin.H{
			"Status":  http.StatusInternalServerError,
			"Message": http.StatusText(http.StatusInternalServerError),
		})
		c.Abort()
	}
}
