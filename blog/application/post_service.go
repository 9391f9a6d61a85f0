package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/quill/blog/domain"
	"github.com/rs/zerolog/log"
)

// Observer is notified of service events, typically to export metrics
type Observer interface {
	PostCreated()
	SearchCompleted(outcome string)
}

// Search outcomes reported to the Observer
const (
	SearchHit     = "hit"
	SearchMiss    = "miss"
	SearchInvalid = "invalid"
)

type noopObserver struct{}

func (noopObserver) PostCreated()           {}
func (noopObserver) SearchCompleted(string) {}

type PostService struct {
	repo     domain.PostRepository
	now      func() time.Time
	observer Observer
	markdown MarkdownRenderer
}

type Option func(*PostService)

// WithClock replaces the wall clock used for relative ages
func WithClock(now func() time.Time) Option {
	return func(s *PostService) {
		s.now = now
	}
}

// WithMarkdownRenderer replaces the converter used for Markdown bodies
func WithMarkdownRenderer(r MarkdownRenderer) Option {
	return func(s *PostService) {
		if r != nil {
			s.markdown = r
		}
	}
}

// WithObserver registers an Observer for created posts and searches
func WithObserver(o Observer) Option {
	return func(s *PostService) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewPostService(repo domain.PostRepository, opts ...Option) *PostService {
	s := &PostService{
		repo:     repo,
		now:      time.Now,
		observer: noopObserver{},
		markdown: NewMarkdownRenderer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostLink is a title paired with the URL path it links to
type PostLink struct {
	Link  string
	Title string
}

// CreatePost validates the form, stores a new post and reads it back
func (s *PostService) CreatePost(ctx context.Context, form PostForm) (*domain.Post, error) {
	if err := s.prepare(&form); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, form.fields())
	if errors.Is(err, domain.ErrDuplicateSlug) {
		return nil, duplicateTitle()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.observer.PostCreated()
	log.Info().Str("postID", id).Str("title", form.Title).Bool("publish", form.Published()).Msg("Post created")

	return s.repo.FindBySlug(ctx, domain.Slugify(form.Title), false)
}

// EditPost applies the form to the post currently at slug, published or not
func (s *PostService) EditPost(ctx context.Context, slug string, form PostForm) (*domain.Post, error) {
	existing, err := s.repo.FindBySlug(ctx, slug, false)
	if err != nil {
		return nil, err
	}

	if err := s.prepare(&form); err != nil {
		return nil, err
	}

	err = s.repo.Update(ctx, existing.ID, form.update())
	if errors.Is(err, domain.ErrDuplicateSlug) {
		return nil, duplicateTitle()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post %s: %w", existing.ID, err)
	}

	log.Info().Str("postID", existing.ID).Str("title", form.Title).Bool("publish", form.Published()).Msg("Post updated")

	return s.repo.FindBySlug(ctx, domain.Slugify(form.Title), false)
}

// GetPublishedPost returns the published post at slug or domain.ErrNotFound
func (s *PostService) GetPublishedPost(ctx context.Context, slug string) (*domain.Post, error) {
	return s.repo.FindBySlug(ctx, slug, true)
}

// GetPost returns the post at slug regardless of its publish flag
func (s *PostService) GetPost(ctx context.Context, slug string) (*domain.Post, error) {
	return s.repo.FindBySlug(ctx, slug, false)
}

// ListPublished links every published post, newest first
func (s *PostService) ListPublished(ctx context.Context) ([]PostLink, error) {
	posts, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]PostLink, 0, len(posts))
	for _, p := range posts {
		links = append(links, PostLink{Link: p.Link(), Title: p.Title})
	}
	return links, nil
}

// ListPublishedPosts returns the published posts themselves, newest first
func (s *PostService) ListPublishedPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.repo.FindPublished(ctx)
}

// ListAll links every post to its edit page
func (s *PostService) ListAll(ctx context.Context) ([]PostLink, error) {
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]PostLink, 0, len(posts))
	for _, p := range posts {
		links = append(links, PostLink{Link: p.AdminLink(), Title: p.Title})
	}
	return links, nil
}

// Age describes how long ago the post was created
func (s *PostService) Age(post *domain.Post) string {
	return Delta(post.CreatedAt, s.now())
}

// prepare validates the form and converts a Markdown body to HTML
func (s *PostService) prepare(form *PostForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if !form.IsMarkdown() {
		return nil
	}

	body, err := s.markdown.Render(form.Body)
	if err != nil {
		return err
	}
	form.Body = body
	form.Format = FormatHTML
	return nil
}

func duplicateTitle() error {
	return &domain.ValidationError{Fields: []domain.FieldError{{Field: "title", Code: domain.CodeDuplicate}}}
}
