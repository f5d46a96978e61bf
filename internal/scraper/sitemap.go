package scraper

import (
	"encoding/xml"
	"io"
	"strings"
)

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapURL `xml:"url"`
}

// ParseSitemap extracts all <loc> entries from an XML sitemap document in
// listed order, excluding the bare site root. The resulting list is visited
// exactly once per run.
func ParseSitemap(r io.Reader, root string) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var urlSet sitemapURLSet
	if err := xml.Unmarshal(data, &urlSet); err != nil {
		return nil, err
	}

	root = strings.TrimSuffix(root, "/")
	var urls []string
	for _, entry := range urlSet.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" || strings.TrimSuffix(loc, "/") == root {
			continue
		}
		urls = append(urls, loc)
	}
	return urls, nil
}
