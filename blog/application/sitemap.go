package application

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Sitemap renders the site root followed by every published post as a sitemaps.org urlset
func (s *PostService) Sitemap(ctx context.Context, baseURL string) ([]byte, error) {
	posts, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(baseURL, "/")
	set := sitemapURLSet{
		Xmlns: sitemapNamespace,
		URLs:  make([]sitemapURL, 0, len(posts)+1),
	}
	set.URLs = append(set.URLs, sitemapURL{Loc: base + "/"})
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + p.Link()})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots returns robots.txt pointing crawlers at the sitemap
func Robots(baseURL string) string {
	return "User-Agent: *\nDisallow:\n\nSitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n"
}
