// Package feedcache holds the session-scoped feed snapshots and patches them
// in place after a confirmed mutation, so every view that could contain the
// affected thread reflects the change without a re-fetch. The cache is never
// authoritative: the store remains the source of truth and any snapshot can be
// discarded and refetched at any time.
package feedcache

import (
	"fmt"
	"sync"

	"github.com/threadline/backend/internal/models"
)

// Key identifies one feed query: the filter parameters plus the viewer, since
// likedByMe and following-filtered pages are viewer-specific.
type Key string

// HomeKey identifies the home feed (all or following-only) for a viewer.
func HomeKey(viewerID string, onlyFollowing bool) Key {
	return Key(fmt.Sprintf("home/%s/following=%t", viewerID, onlyFollowing))
}

// ProfileKey identifies an author's profile feed for a viewer.
func ProfileKey(viewerID, authorID string) Key {
	return Key(fmt.Sprintf("profile/%s/%s", viewerID, authorID))
}

// ReplyKey identifies a thread's reply feed for a viewer.
func ReplyKey(viewerID, threadID string) Key {
	return Key(fmt.Sprintf("replies/%s/%s", viewerID, threadID))
}

// ParentKey identifies a thread's ancestor feed for a viewer.
func ParentKey(viewerID, threadID string) Key {
	return Key(fmt.Sprintf("parents/%s/%s", viewerID, threadID))
}

// Cache stores feed page snapshots keyed by query identity and request cursor.
type Cache struct {
	mu sync.RWMutex
	// snapshots[key][cursorToken] is the page fetched for that cursor;
	// the empty token is the feed's first page.
	snapshots map[Key]map[string][]models.ThreadView
}

// New creates an empty Cache
func New() *Cache {
	return &Cache{snapshots: make(map[Key]map[string][]models.ThreadView)}
}

// Register stores a fetched page under its query key and request cursor,
// replacing any previous snapshot of the same page.
func (c *Cache) Register(key Key, cursorToken string, threads []models.ThreadView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pages, ok := c.snapshots[key]
	if !ok {
		pages = make(map[string][]models.ThreadView)
		c.snapshots[key] = pages
	}
	pages[cursorToken] = append([]models.ThreadView(nil), threads...)
}

// Pages returns a copy of every cached thread for a key, first page first.
func (c *Cache) Pages(key Key) [][]models.ThreadView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pages, ok := c.snapshots[key]
	if !ok {
		return nil
	}
	var out [][]models.ThreadView
	if first, ok := pages[""]; ok {
		out = append(out, append([]models.ThreadView(nil), first...))
	}
	for token, page := range pages {
		if token == "" {
			continue
		}
		out = append(out, append([]models.ThreadView(nil), page...))
	}
	return out
}

// PatchThread applies update to every cached thread matching pred, across all
// registered snapshots. Non-matching threads and page order are untouched.
func (c *Cache) PatchThread(pred func(models.ThreadView) bool, update func(*models.ThreadView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pages := range c.snapshots {
		for _, page := range pages {
			for i := range page {
				if pred(page[i]) {
					update(&page[i])
				}
			}
		}
	}
}

// ApplyLikeToggle patches a confirmed like toggle into every snapshot that
// contains the thread: likeCount moves by one and likedByMe flips.
func (c *Cache) ApplyLikeToggle(threadID string, added bool) {
	delta := -1
	if added {
		delta = 1
	}
	c.PatchThread(
		func(t models.ThreadView) bool { return t.ID == threadID },
		func(t *models.ThreadView) {
			t.LikeCount += delta
			t.LikedByMe = added
		},
	)
}

// Prepend puts a just-created thread at the top of a feed's first cached page,
// if one is registered. This is a deliberate approximation: concurrent inserts
// by others are not re-sorted in, the next fetch reconciles.
func (c *Cache) Prepend(key Key, view models.ThreadView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pages, ok := c.snapshots[key]
	if !ok {
		return
	}
	first, ok := pages[""]
	if !ok {
		return
	}
	pages[""] = append([]models.ThreadView{view}, first...)
}

// Invalidate drops every snapshot registered under a key.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, key)
}
