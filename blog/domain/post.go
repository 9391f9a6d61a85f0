package domain

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// TagSeparator joins the labels of a post's raw tag string
const TagSeparator = ", "

// Post represents a blog post
// A post is written by an authenticated author and is visible to visitors only while Publish is set.
// CreatedAt never changes after creation; ChangedAt is zero until the first edit.
type Post struct {
	ID        string
	Slug      string
	Title     string
	Author    string
	Tags      string
	Body      string
	CreatedAt time.Time
	ChangedAt time.Time
	Publish   bool
}

// Link returns the public URL path of the post
func (p *Post) Link() string {
	return BlogPath(p.URLSlug())
}

// AdminLink returns the URL path of the post's edit page
func (p *Post) AdminLink() string {
	return "/admin/edit/" + url.PathEscape(p.URLSlug())
}

// BlogPath returns the public URL path for slug; the slug is escaped as a single path segment
func BlogPath(slug string) string {
	return "/blog/" + url.PathEscape(slug)
}

// URLSlug returns the stored slug, deriving one from the title for documents that predate slugs
func (p *Post) URLSlug() string {
	if p.Slug != "" {
		return p.Slug
	}
	return Slugify(p.Title)
}

// TagList splits the raw tag string into its labels
func (p *Post) TagList() []string {
	return SplitTags(p.Tags)
}

// PostFields holds the author-supplied fields of a new post
type PostFields struct {
	Title   string
	Author  string
	Tags    string
	Body    string
	Publish bool
}

// PostUpdate holds the fields an edit may change; the author is fixed at creation
type PostUpdate struct {
	Title   string
	Tags    string
	Body    string
	Publish bool
}

type PostRepository interface {
	// Create inserts a new post stamped with the current time and returns its identifier
	Create(ctx context.Context, fields PostFields) (string, error)

	// FindPublished returns every published post, newest first
	FindPublished(ctx context.Context) ([]*Post, error)

	// FindBySlug returns the earliest-created post matching slug
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*Post, error)

	// FindAll returns every post regardless of its publish flag
	FindAll(ctx context.Context) ([]*Post, error)

	// Update overwrites the editable fields of a post and stamps its change time
	Update(ctx context.Context, id string, update PostUpdate) error

	// DistinctTagStrings returns the distinct raw tag strings across the collection
	DistinctTagStrings(ctx context.Context, publishedOnly bool) ([]string, error)
}

// Slugify derives the URL slug of a title by replacing spaces with hyphens
func Slugify(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "-")
}

// TitleFromSlug reverses Slugify for titles that contain no hyphens of their own
func TitleFromSlug(slug string) string {
	return strings.ReplaceAll(slug, "-", " ")
}

// SplitTags splits a raw tag string on TagSeparator
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, TagSeparator)
}
