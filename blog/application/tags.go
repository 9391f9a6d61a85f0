package application

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dfryer1193/quill/blog/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TagTitles pairs a tag with the titles of the published posts carrying it
type TagTitles struct {
	Tag    string
	Titles []string
}

// AllTags returns the sorted, title-cased, de-duplicated tags of published posts
func (s *PostService) AllTags(ctx context.Context) ([]string, error) {
	raw, err := s.repo.DistinctTagStrings(ctx, true)
	if err != nil {
		return nil, err
	}
	return normalizeTags(raw), nil
}

// TitlesForTag returns the titles of published posts whose tags contain tag, ignoring case
func (s *PostService) TitlesForTag(ctx context.Context, tag string) ([]string, error) {
	posts, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, err
	}
	return titlesForTag(posts, tag), nil
}

// TagsWithTitles pairs every tag with its titles, dropping tags no published post matches
func (s *PostService) TagsWithTitles(ctx context.Context) ([]TagTitles, error) {
	tags, err := s.AllTags(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TagTitles, 0, len(tags))
	for _, tag := range tags {
		titles := titlesForTag(posts, tag)
		if len(titles) == 0 {
			continue
		}
		out = append(out, TagTitles{Tag: tag, Titles: titles})
	}
	return out, nil
}

func normalizeTags(raw []string) []string {
	upper, lower := cases.Upper(language.Und), cases.Lower(language.Und)

	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, r := range raw {
		for _, label := range domain.SplitTags(r) {
			tag := capWords(upper, lower, label)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	sort.Strings(tags)
	return tags
}

// capWords upper-cases the first letter of each whitespace-separated word and lower-cases
// the rest, so "go-lang" becomes "Go-lang"
func capWords(upper, lower cases.Caser, label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// titlesForTag matches tag as a plain substring so "Go" also finds "Golang"
func titlesForTag(posts []*domain.Post, tag string) []string {
	needle := strings.ToLower(tag)
	titles := make([]string, 0)
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Tags), needle) {
			titles = append(titles, p.Title)
		}
	}
	return titles
}
