package linkmeta

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Example Article</title>
<meta name="description" content="A short description of the page.">
<link rel="shortcut icon" href="/static/favicon.png">
</head>
<body>
<article><p>Body text that should not become the description because the meta tag wins.</p></article>
</body>
</html>`

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u
}

func TestParseMetadata(t *testing.T) {
	base := mustParse(t, "https://example.com/posts/1")

	meta, err := parseMetadata([]byte(samplePage), base)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if meta.Title != "Example Article" {
		t.Fatalf("expected title from <title>, got %q", meta.Title)
	}
	if meta.Description != "A short description of the page." {
		t.Fatalf("expected meta description, got %q", meta.Description)
	}
	if meta.FaviconURL != "https://example.com/static/favicon.png" {
		t.Fatalf("expected resolved favicon url, got %q", meta.FaviconURL)
	}
}

func TestParseMetadataFallbacks(t *testing.T) {
	base := mustParse(t, "https://example.com/")

	meta, err := parseMetadata([]byte(`<html><head></head><body><p>hi</p></body></html>`), base)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if meta.Title != "example.com" {
		t.Fatalf("expected host fallback title, got %q", meta.Title)
	}
	if meta.FaviconURL != "https://example.com/favicon.ico" {
		t.Fatalf("expected /favicon.ico fallback, got %q", meta.FaviconURL)
	}
}

func TestParseMetadataOpenGraph(t *testing.T) {
	base := mustParse(t, "https://example.com/")
	page := `<html><head>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description.">
</head><body></body></html>`

	meta, err := parseMetadata([]byte(page), base)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if meta.Title != "OG Title" || meta.Description != "OG description." {
		t.Fatalf("expected open graph values, got %+v", meta)
	}
}

func TestArticleExcerptTruncates(t *testing.T) {
	base := mustParse(t, "https://example.com/")
	long := strings.Repeat("word ", 200)
	page := `<html><body><article><h1>Title</h1><p>` + long + `</p></article></body></html>`

	excerpt := articleExcerpt([]byte(page), base)
	if len(excerpt) > maxDescription+4 {
		t.Fatalf("excerpt too long: %d chars", len(excerpt))
	}
}

func TestFetchRejectsBadSchemes(t *testing.T) {
	f := NewFetcher()

	if _, err := f.Fetch(context.Background(), "ftp://example.com"); err == nil {
		t.Fatalf("expected scheme rejection")
	}
	if _, err := f.Fetch(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatalf("expected scheme rejection")
	}
}
