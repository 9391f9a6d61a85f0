package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/quill/blog/application"
	"github.com/dfryer1193/quill/blog/domain"
	"github.com/gin-gonic/gin"
)

// searchView is the outcome of a search box submission
type searchView struct {
	Query     string
	Results   []application.SearchResult
	NoResults bool
	Error     string
}

// searchBox is what the "search" template renders
type searchBox struct {
	Method string
	Action string
	Field  string
	View   searchView
}

// runSearch turns validation failures and empty results into view state; other errors are returned
func (h *Handler) runSearch(c *gin.Context, query string, scope application.Scope) (searchView, int, error) {
	view := searchView{Query: query}

	results, err := h.posts.Search(c.Request.Context(), query, scope)
	var verr *domain.ValidationError
	switch {
	case err == nil:
		view.Results = results
	case application.IsNoResults(err):
		view.NoResults = true
	case errors.As(err, &verr):
		view.Error = verr.Fields[0].Message()
		return view, http.StatusBadRequest, nil
	default:
		return view, 0, err
	}
	return view, http.StatusOK, nil
}

func (h *Handler) Home(c *gin.Context) {
	h.renderHome(c, http.StatusOK, searchView{})
}

func (h *Handler) HomeSearch(c *gin.Context) {
	var form application.SearchForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderHome(c, http.StatusBadRequest, searchView{Error: "search could not be read"})
		return
	}

	view, status, err := h.runSearch(c, form.Search, application.ScopePublished)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderHome(c, status, view)
}

func (h *Handler) renderHome(c *gin.Context, status int, view searchView) {
	posts, err := h.posts.ListPublished(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(status, "blog.html", h.page("", gin.H{
		"Posts":  posts,
		"Search": searchBox{Method: http.MethodPost, Action: "/", Field: "search", View: view},
	}))
}

func (h *Handler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", h.page("About", gin.H{
		"About": h.site.About,
	}))
}

func (h *Handler) Categories(c *gin.Context) {
	tags, err := h.posts.TagsWithTitles(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "categories.html", h.page("Categories", gin.H{
		"Tags": tags,
	}))
}

func (h *Handler) Archive(c *gin.Context) {
	months, err := h.posts.MonthsAndYears(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "archive.html", h.page("Archive", gin.H{
		"Months": months,
	}))
}

func (h *Handler) ShowPost(c *gin.Context) {
	post, err := h.posts.GetPublishedPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "post.html", h.page(post.Title, gin.H{
		"Post": post,
		"Age":  h.posts.Age(post),
	}))
}
