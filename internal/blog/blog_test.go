package blog

import (
	"os"
	"path/filepath"
	"testing"
)

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write post: %v", err)
	}
}

func TestParsePostFrontmatter(t *testing.T) {
	raw := `---
title: First Post
date: 2025-06-01T00:00:00Z
tags: [go, canvas]
summary: A summary.
---
Hello **world**.
`
	post, err := parsePost("first-post", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if post.Title != "First Post" {
		t.Fatalf("unexpected title %q", post.Title)
	}
	if post.Date.Year() != 2025 || post.Date.Month() != 6 {
		t.Fatalf("unexpected date %v", post.Date)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" {
		t.Fatalf("unexpected tags %v", post.Tags)
	}
	if post.Body != "Hello **world**.\n" {
		t.Fatalf("unexpected body %q", post.Body)
	}
}

func TestParsePostWithoutFrontmatter(t *testing.T) {
	post, err := parsePost("plain", "Just text.")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if post.Title != "" && post.Title != "plain" {
		t.Fatalf("unexpected title %q", post.Title)
	}
	if post.Body != "Just text." {
		t.Fatalf("unexpected body %q", post.Body)
	}
}

func TestParsePostUnterminatedFrontmatter(t *testing.T) {
	if _, err := parsePost("broken", "---\ntitle: x\nno end"); err == nil {
		t.Fatalf("expected error for unterminated frontmatter")
	}
}

func TestLibraryListsPublishedSorted(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "older.md", "---\ntitle: Older\ndate: 2024-01-01T00:00:00Z\n---\nold\n")
	writePost(t, dir, "newer.md", "---\ntitle: Newer\ndate: 2025-01-01T00:00:00Z\n---\nnew\n")
	writePost(t, dir, "hidden.md", "---\ntitle: Hidden\ndraft: true\n---\nsecret\n")
	writePost(t, dir, "notes.txt", "not a post")

	lib, err := NewLibrary(dir)
	if err != nil {
		t.Fatalf("new library: %v", err)
	}

	posts := lib.Posts()
	if len(posts) != 2 {
		t.Fatalf("expected 2 published posts, got %d", len(posts))
	}
	if posts[0].Slug != "newer" || posts[1].Slug != "older" {
		t.Fatalf("expected newest first, got %v then %v", posts[0].Slug, posts[1].Slug)
	}
	if posts[0].Body != "" {
		t.Fatalf("list must omit bodies")
	}
}

func TestLibraryGet(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "post.md", "---\ntitle: Post\n---\nbody text\n")
	writePost(t, dir, "draft.md", "---\ntitle: Draft\ndraft: true\n---\nwip\n")

	lib, err := NewLibrary(dir)
	if err != nil {
		t.Fatalf("new library: %v", err)
	}

	post, err := lib.Get("post")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if post.Body != "body text\n" {
		t.Fatalf("unexpected body %q", post.Body)
	}

	if _, err := lib.Get("draft"); err != ErrNotFound {
		t.Fatalf("drafts must be invisible, got %v", err)
	}
	if _, err := lib.Get("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
