// Package blog serves the markdown posts of the personal site. Posts
// live as files on disk; the library keeps them in memory and reloads on
// file changes.
package blog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"atelier/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no published post has the requested slug.
var ErrNotFound = errors.New("blog: post not found")

// Post is one markdown post. Body is raw markdown; rendering happens on
// the client.
type Post struct {
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Tags    []string  `json:"tags,omitempty"`
	Summary string    `json:"summary,omitempty"`
	Draft   bool      `json:"-"`
	Body    string    `json:"body,omitempty"`
}

type frontmatter struct {
	Title   string    `yaml:"title"`
	Date    time.Time `yaml:"date"`
	Tags    []string  `yaml:"tags"`
	Summary string    `yaml:"summary"`
	Draft   bool      `yaml:"draft"`
}

// Library holds all posts of a directory in memory.
type Library struct {
	dir string

	mu    sync.RWMutex
	posts map[string]Post

	watcher *fsnotify.Watcher
}

// NewLibrary loads all posts from dir.
func NewLibrary(dir string) (*Library, error) {
	l := &Library{dir: dir, posts: make(map[string]Post)}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Watch starts reloading the library on file changes until the watcher is
// closed. Reload failures keep the previous state.
func (l *Library) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return err
	}
	l.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := l.reload(); err != nil {
					logger.Error("Failed to reload posts", "err", err)
					continue
				}
				logger.Info("Reloaded posts", "trigger", event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Post watcher error", "err", err)
			}
		}
	}()

	return nil
}

// Close stops the watcher, if running.
func (l *Library) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

func (l *Library) reload() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return err
	}

	posts := make(map[string]Post)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		slug := strings.TrimSuffix(entry.Name(), ".md")
		post, err := parsePost(slug, string(raw))
		if err != nil {
			logger.Warn("Skipping unparseable post", "file", entry.Name(), "err", err)
			continue
		}
		posts[slug] = post
	}

	l.mu.Lock()
	l.posts = posts
	l.mu.Unlock()
	return nil
}

// parsePost splits a markdown file into YAML frontmatter and body. The
// frontmatter block is delimited by a leading and a closing "---" line; a
// file without one is a post with only a body.
func parsePost(slug, raw string) (Post, error) {
	post := Post{Slug: slug, Body: raw}

	if !strings.HasPrefix(raw, "---\n") && !strings.HasPrefix(raw, "---\r\n") {
		return post, nil
	}

	rest := raw[strings.Index(raw, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return Post{}, fmt.Errorf("unterminated frontmatter in %s", slug)
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return Post{}, fmt.Errorf("invalid frontmatter in %s: %w", slug, err)
	}

	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")

	post.Title = fm.Title
	post.Date = fm.Date
	post.Tags = fm.Tags
	post.Summary = fm.Summary
	post.Draft = fm.Draft
	post.Body = body
	if post.Title == "" {
		post.Title = slug
	}
	return post, nil
}

// Posts returns all published posts, newest first, without bodies.
func (l *Library) Posts() []Post {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Post, 0, len(l.posts))
	for _, p := range l.posts {
		if p.Draft {
			continue
		}
		p.Body = ""
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Get returns one published post including its body.
func (l *Library) Get(slug string) (Post, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	post, ok := l.posts[slug]
	if !ok || post.Draft {
		return Post{}, ErrNotFound
	}
	return post, nil
}
