package application

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dfryer1193/quill/blog/domain"
)

// fakeRepository is an in-memory domain.PostRepository with a settable clock
type fakeRepository struct {
	posts []*domain.Post
	now   time.Time
	err   error
}

func newFakeRepository(now time.Time) *fakeRepository {
	return &fakeRepository{now: now}
}

func (r *fakeRepository) Create(ctx context.Context, fields domain.PostFields) (string, error) {
	if r.err != nil {
		return "", domain.NewStoreError("create post", r.err)
	}
	slug := domain.Slugify(fields.Title)
	for _, p := range r.posts {
		if p.Slug == slug {
			return "", domain.NewStoreError("create post", domain.ErrDuplicateSlug)
		}
	}
	id := strconv.Itoa(len(r.posts) + 1)
	r.posts = append(r.posts, &domain.Post{
		ID:        id,
		Slug:      slug,
		Title:     fields.Title,
		Author:    fields.Author,
		Tags:      fields.Tags,
		Body:      fields.Body,
		CreatedAt: r.now,
		Publish:   fields.Publish,
	})
	return id, nil
}

func (r *fakeRepository) FindPublished(ctx context.Context) ([]*domain.Post, error) {
	if r.err != nil {
		return nil, domain.NewStoreError("list published posts", r.err)
	}
	out := make([]*domain.Post, 0)
	for i := len(r.posts) - 1; i >= 0; i-- {
		if r.posts[i].Publish {
			out = append(out, copyPost(r.posts[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Post, error) {
	if r.err != nil {
		return nil, domain.NewStoreError("get post", r.err)
	}
	title := domain.TitleFromSlug(slug)
	for _, p := range r.posts {
		if (p.Slug == slug || p.Title == title) && (!publishedOnly || p.Publish) {
			return copyPost(p), nil
		}
	}
	return nil, fmt.Errorf("post not found: %s: %w", slug, domain.ErrNotFound)
}

func (r *fakeRepository) FindAll(ctx context.Context) ([]*domain.Post, error) {
	if r.err != nil {
		return nil, domain.NewStoreError("list posts", r.err)
	}
	out := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, copyPost(p))
	}
	return out, nil
}

func (r *fakeRepository) Update(ctx context.Context, id string, update domain.PostUpdate) error {
	if r.err != nil {
		return domain.NewStoreError("update post", r.err)
	}
	slug := domain.Slugify(update.Title)
	var target *domain.Post
	for _, p := range r.posts {
		if p.ID == id {
			target = p
		} else if p.Slug == slug {
			return domain.NewStoreError("update post", domain.ErrDuplicateSlug)
		}
	}
	if target == nil {
		return fmt.Errorf("post not found: %s: %w", id, domain.ErrNotFound)
	}
	target.Slug = slug
	target.Title = update.Title
	target.Tags = update.Tags
	target.Body = update.Body
	target.Publish = update.Publish
	target.ChangedAt = r.now
	return nil
}

func (r *fakeRepository) DistinctTagStrings(ctx context.Context, publishedOnly bool) ([]string, error) {
	if r.err != nil {
		return nil, domain.NewStoreError("list tags", r.err)
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range r.posts {
		if publishedOnly && !p.Publish {
			continue
		}
		if _, ok := seen[p.Tags]; ok {
			continue
		}
		seen[p.Tags] = struct{}{}
		out = append(out, p.Tags)
	}
	return out, nil
}

func copyPost(p *domain.Post) *domain.Post {
	c := *p
	return &c
}

// countingObserver records service events
type countingObserver struct {
	created  int
	outcomes []string
}

func (o *countingObserver) PostCreated() { o.created++ }

func (o *countingObserver) SearchCompleted(outcome string) { o.outcomes = append(o.outcomes, outcome) }
