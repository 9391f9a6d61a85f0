package rest

import (
	"fmt"

	"github.com/dfryer1193/quill/blog/application"
	"github.com/dfryer1193/quill/internal/auth"
	"github.com/dfryer1193/quill/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Site holds the static settings shown on every page
type Site struct {
	Title   string
	About   string
	BaseURL string
}

type Dependencies struct {
	Posts       *application.PostService
	Credentials auth.CredentialProvider
	// Metrics is optional; when set, requests are measured and /metrics is served
	Metrics *middleware.Metrics
	// Health is optional; /healthz answers 200 without one
	Health HealthCheck
	Site   Site
	Realm  string
}

type Handler struct {
	posts *application.PostService
	site  Site
}

// NewRouter builds the gin engine with middleware, templates and every route
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Posts == nil || deps.Credentials == nil {
		return nil, fmt.Errorf("router needs a post service and a credential provider")
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	// Slugs are escaped as one path segment, so "/" in a title arrives as %2F
	router.UseRawPath = true
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.LoggingMiddleware())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	h := &Handler{
		posts: deps.Posts,
		site:  deps.Site,
	}

	NewPages(router, h)
	NewAdmin(router, h, middleware.BasicAuth(deps.Credentials, deps.Realm))
	NewApi(router, h)
	NewSEO(router, h)
	NewHealth(router, deps.Health)

	router.NoRoute(h.NotFound)

	return router, nil
}

// NewApi registers the read-only JSON API
func NewApi(router *gin.Engine, h *Handler) {
	postsV1 := router.Group("posts/v1")
	{
		postsV1.GET("/", h.GetPosts)
		postsV1.GET("/tags", h.GetTags)
		postsV1.GET("/archive", h.GetArchive)
		postsV1.GET("/search", h.SearchPosts)
		postsV1.GET("/post/:slug", h.GetPost)
	}
}

// NewPages registers the public HTML pages
func NewPages(router *gin.Engine, h *Handler) {
	router.GET("/", h.Home)
	router.POST("/", h.HomeSearch)
	router.GET("/about", h.About)
	router.POST("/about", h.About)
	router.GET("/categories", h.Categories)
	router.POST("/categories", h.Categories)
	router.GET("/archive", h.Archive)
	router.GET("/blog/:slug", h.ShowPost)
}

// NewAdmin registers the author pages behind authMiddleware; logout stays open
func NewAdmin(router *gin.Engine, h *Handler, authMiddleware gin.HandlerFunc) {
	router.GET("/admin/logout", h.Logout)

	admin := router.Group("/admin", authMiddleware)
	{
		admin.GET("", h.AdminList)
		admin.GET("/write", h.WriteForm)
		admin.POST("/write", h.CreatePost)
		admin.GET("/edit", h.EditList)
		admin.GET("/edit/:slug", h.EditForm)
		admin.POST("/edit/:slug", h.UpdatePost)
	}
}

// NewSEO registers the sitemap and robots.txt
func NewSEO(router *gin.Engine, h *Handler) {
	router.GET("/sitemap.xml", h.Sitemap)
	router.GET("/robots.txt", h.Robots)
}
