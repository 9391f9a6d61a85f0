package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/quill/api"
	"github.com/dfryer1193/quill/blog/domain"
	"github.com/dfryer1193/quill/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const notFoundTemplate = "404.html"

// NotFound renders the custom 404 page
func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, notFoundTemplate, h.page("Not found", nil))
}

// fail renders the 404 page for domain.ErrNotFound and the error page for everything else
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.NotFound(c)
		return
	}

	_ = c.Error(err)
	log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("Request failed")

	c.HTML(http.StatusInternalServerError, middleware.ErrorTemplate, gin.H{
		"Status":  http.StatusInternalServerError,
		"Message": http.StatusText(http.StatusInternalServerError),
	})
}

// failJSON maps an error onto the JSON API's status codes
func failJSON(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, api.Error{Error: "not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.Error{Error: "invalid request", Fields: verr.Messages()})
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, api.Error{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

// page returns template data carrying the site settings and a page title
func (h *Handler) page(title string, data gin.H) gin.H {
	out := gin.H{
		"Site":  h.site,
		"Title": title,
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}
