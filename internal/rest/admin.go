package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/quill/blog/application"
	"github.com/dfryer1193/quill/blog/domain"
	"github.com/gin-gonic/gin"
)

const writeTemplate = "write.html"

// Logout answers 401 without a challenge so browsers drop cached Basic credentials
func (h *Handler) Logout(c *gin.Context) {
	c.String(http.StatusUnauthorized, "Logout")
}

// AdminList lists every post; ?q= searches all bodies, drafts included
func (h *Handler) AdminList(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	view := searchView{}
	if q, ok := c.GetQuery("q"); ok {
		var err error
		view, status, err = h.runSearch(c, q, application.ScopeAll)
		if err != nil {
			h.fail(c, err)
			return
		}
	}

	posts, err := h.posts.ListAll(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(status, "admin.html", h.page("Admin", gin.H{
		"Posts":  posts,
		"Search": searchBox{Method: http.MethodGet, Action: "/admin", Field: "q", View: view},
	}))
}

func (h *Handler) EditList(c *gin.Context) {
	posts, err := h.posts.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "edit.html", h.page("Edit", gin.H{
		"Posts": posts,
	}))
}

func (h *Handler) WriteForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "Write a post", "/admin/write", &application.PostForm{Publish: "y"}, nil)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var form application.PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, "Write a post", "/admin/write", &form, nil)
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), form)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(c, http.StatusBadRequest, "Write a post", "/admin/write", &form, verr)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.renderPreview(c, post)
}

func (h *Handler) EditForm(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}

	form := application.FormFromPost(post)
	h.renderForm(c, http.StatusOK, "Edit", post.AdminLink(), &form, nil)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	action := c.Request.URL.Path

	var form application.PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, "Edit", action, &form, nil)
		return
	}

	post, err := h.posts.EditPost(c.Request.Context(), c.Param("slug"), form)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(c, http.StatusBadRequest, "Edit", action, &form, verr)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.renderPreview(c, post)
}

func (h *Handler) renderForm(c *gin.Context, status int, heading, action string, form *application.PostForm, verr *domain.ValidationError) {
	errs := map[string]string{}
	if verr != nil {
		errs = verr.Messages()
	}

	c.HTML(status, writeTemplate, h.page(heading, gin.H{
		"Heading": heading,
		"Action":  action,
		"Form":    form,
		"Errors":  errs,
	}))
}

// renderPreview shows the stored post after a successful write or edit
func (h *Handler) renderPreview(c *gin.Context, post *domain.Post) {
	c.HTML(http.StatusOK, "post-edit.html", h.page(post.Title, gin.H{
		"Post": post,
		"Age":  h.posts.Age(post),
	}))
}
