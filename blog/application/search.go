package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/dfryer1193/quill/blog/domain"
)

// Scope selects which posts a search may return
type Scope int

const (
	// ScopePublished limits visitors to published posts
	ScopePublished Scope = iota
	// ScopeAll covers drafts too, for the admin list
	ScopeAll
)

// SearchResult links a matching post
type SearchResult struct {
	Link  string
	Title string
}

// Search matches query as a case-insensitive regular expression against post bodies.
// No match is domain.ErrNotFound, never an empty slice.
func (s *PostService) Search(ctx context.Context, query string, scope Scope) ([]SearchResult, error) {
	form := SearchForm{Search: query}
	if err := form.Validate(); err != nil {
		s.observer.SearchCompleted(SearchInvalid)
		return nil, err
	}

	re, err := compileSearch(form.Search)
	if err != nil {
		s.observer.SearchCompleted(SearchInvalid)
		return nil, &domain.ValidationError{Fields: []domain.FieldError{{Field: "search", Code: domain.CodeInvalidPattern}}}
	}

	var posts []*domain.Post
	if scope == ScopeAll {
		posts, err = s.repo.FindAll(ctx)
	} else {
		posts, err = s.repo.FindPublished(ctx)
	}
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	for _, p := range posts {
		if !re.MatchString(p.Body) {
			continue
		}
		link := p.Link()
		if scope == ScopeAll {
			link = p.AdminLink()
		}
		results = append(results, SearchResult{Link: link, Title: p.Title})
	}

	if len(results) == 0 {
		s.observer.SearchCompleted(SearchMiss)
		return nil, fmt.Errorf("no posts match %q: %w", form.Search, domain.ErrNotFound)
	}

	s.observer.SearchCompleted(SearchHit)
	return results, nil
}

// IsNoResults reports whether err is a search that ran and matched nothing
func IsNoResults(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
