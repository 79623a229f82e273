// Package linkmeta resolves the metadata shown on link cards: page
// title, a short description and the site's favicon.
package linkmeta

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// Metadata is the resolved page metadata for one URL.
type Metadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FaviconURL  string `json:"favicon_url,omitempty"`
}

const (
	maxBodyBytes   = 2 << 20
	maxDescription = 280
)

// Fetcher fetches and caches link metadata. Concurrent requests for the
// same URL are collapsed into one fetch.
type Fetcher struct {
	httpClient *http.Client

	cache   map[string]Metadata
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      make(map[string]Metadata),
	}
}

// Fetch resolves metadata for an http(s) URL. Results are cached for the
// lifetime of the fetcher; link card metadata does not need freshness.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return Metadata{}, fmt.Errorf("invalid url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return Metadata{}, fmt.Errorf("unsupported url scheme: %s", base.Scheme)
	}

	key := base.String()

	f.cacheMu.RLock()
	if cached, ok := f.cache[key]; ok {
		f.cacheMu.RUnlock()
		return cached, nil
	}
	f.cacheMu.RUnlock()

	result, err, _ := f.group.Do(key, func() (any, error) {
		f.cacheMu.RLock()
		if cached, ok := f.cache[key]; ok {
			f.cacheMu.RUnlock()
			return cached, nil
		}
		f.cacheMu.RUnlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
		if err != nil {
			return Metadata{}, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return Metadata{}, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return Metadata{}, fmt.Errorf("fetch returned status %d", resp.StatusCode)
		}

		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(contentType, "text/html") {
			return Metadata{URL: key, Title: base.Host, FaviconURL: defaultFavicon(base)}, nil
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return Metadata{}, err
		}

		meta, err := parseMetadata(body, base)
		if err != nil {
			return Metadata{}, err
		}

		f.cacheMu.Lock()
		f.cache[key] = meta
		f.cacheMu.Unlock()

		return meta, nil
	})
	if err != nil {
		return Metadata{}, err
	}

	return result.(Metadata), nil
}

// parseMetadata extracts the title, description and favicon reference
// from an HTML document. The description prefers the meta tags and falls
// back to an excerpt of the readable article text.
func parseMetadata(body []byte, base *url.URL) (Metadata, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse html: %w", err)
	}

	meta := Metadata{URL: base.String()}
	var iconHref string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" && n.FirstChild != nil {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name := attr(n, "name")
				if name == "" {
					name = attr(n, "property")
				}
				content := attr(n, "content")
				switch name {
				case "og:title":
					if meta.Title == "" {
						meta.Title = strings.TrimSpace(content)
					}
				case "description", "og:description":
					if meta.Description == "" {
						meta.Description = strings.TrimSpace(content)
					}
				}
			case "link":
				rels := strings.Fields(strings.ToLower(attr(n, "rel")))
				for _, rel := range rels {
					if rel == "icon" && iconHref == "" {
						iconHref = attr(n, "href")
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = base.Host
	}
	if meta.Description == "" {
		meta.Description = articleExcerpt(body, base)
	}

	meta.FaviconURL = defaultFavicon(base)
	if iconHref != "" {
		if resolved, err := base.Parse(iconHref); err == nil {
			meta.FaviconURL = resolved.String()
		}
	}

	return meta, nil
}

// articleExcerpt pulls the readable article text and truncates it to a
// description-sized excerpt. Failures just yield an empty description.
func articleExcerpt(body []byte, base *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), base)
	if err != nil {
		return ""
	}
	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(builder.String()), " ")
	if len(text) > maxDescription {
		cut := strings.LastIndex(text[:maxDescription], " ")
		if cut <= 0 {
			cut = maxDescription
		}
		text = text[:cut] + "…"
	}
	return text
}

func defaultFavicon(base *url.URL) string {
	return base.Scheme + "://" + base.Host + "/favicon.ico"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
