package rest

import (
	"net/http"

	"github.com/dfryer1193/quill/blog/application"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Sitemap(c *gin.Context) {
	out, err := h.posts.Sitemap(c.Request.Context(), h.baseURL(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", out)
}

func (h *Handler) Robots(c *gin.Context) {
	c.String(http.StatusOK, application.Robots(h.baseURL(c)))
}

// baseURL prefers the configured site URL and otherwise derives one from the request
func (h *Handler) baseURL(c *gin.Context) string {
	if h.site.BaseURL != "" {
		return h.site.BaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
