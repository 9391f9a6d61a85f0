package rest

import (
	"net/http"
	"time"

	"github.com/dfryer1193/quill/api"
	"github.com/dfryer1193/quill/blog/application"
	"github.com/dfryer1193/quill/blog/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetPosts(c *gin.Context) {
	links, err := h.posts.ListPublished(c.Request.Context())
	if err != nil {
		failJSON(c, err)
		return
	}

	out := make([]api.PostLink, 0, len(links))
	for _, l := range links {
		out = append(out, api.PostLink{Title: l.Title, Link: l.Link})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.GetPublishedPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toAPIPost(post))
}

func (h *Handler) GetTags(c *gin.Context) {
	tags, err := h.posts.TagsWithTitles(c.Request.Context())
	if err != nil {
		failJSON(c, err)
		return
	}

	out := make([]api.TagTitles, 0, len(tags))
	for _, t := range tags {
		out = append(out, api.TagTitles{Tag: t.Tag, Titles: t.Titles})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetArchive(c *gin.Context) {
	months, err := h.posts.MonthsAndYears(c.Request.Context())
	if err != nil {
		failJSON(c, err)
		return
	}

	out := make([]api.ArchiveMonth, 0, len(months))
	for _, m := range months {
		out = append(out, api.ArchiveMonth{Month: m.Label, Titles: m.Titles})
	}
	c.JSON(http.StatusOK, out)
}

// SearchPosts searches published bodies; no match is a 404, not an empty list
func (h *Handler) SearchPosts(c *gin.Context) {
	results, err := h.posts.Search(c.Request.Context(), c.Query("q"), application.ScopePublished)
	if err != nil {
		failJSON(c, err)
		return
	}

	out := make([]api.PostLink, 0, len(results))
	for _, r := range results {
		out = append(out, api.PostLink{Title: r.Title, Link: r.Link})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) toAPIPost(post *domain.Post) api.Post {
	out := api.Post{
		ID:        post.ID,
		Slug:      post.URLSlug(),
		Title:     post.Title,
		Author:    post.Author,
		Tags:      post.TagList(),
		Body:      post.Body,
		Link:      post.Link(),
		CreatedAt: post.CreatedAt.UTC().Format(time.RFC3339),
		Age:       h.posts.Age(post),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !post.ChangedAt.IsZero() {
		out.ChangedAt = post.ChangedAt.UTC().Format(time.RFC3339)
	}
	return out
}
