package middleware

import (
	"net/http"
	"strconv"

	"github.com/dfryer1193/quill/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// BasicAuth challenges every request that lacks credentials accepted by provider.
// The authenticated username is stored under gin.AuthUserKey.
func BasicAuth(provider auth.CredentialProvider, realm string) gin.HandlerFunc {
	challenge := "Basic realm=" + strconv.Quote(realm)

	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !provider.Verify(username, password) {
			if ok {
				log.Warn().Str("username", username).Str("path", c.Request.URL.Path).Msg("Rejected admin credentials")
			}
			c.Header("WWW-Authenticate", challenge)
			c.String(http.StatusUnauthorized, "Unauthorized Access")
			c.Abort()
			return
		}

		c.Set(gin.AuthUserKey, username)
		c.Next()
	}
}
