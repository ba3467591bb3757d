package feedcache

import (
	"testing"
	"time"

	"github.com/threadline/backend/internal/models"
)

var createdAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func view(id string, likeCount int, likedByMe bool) models.ThreadView {
	return models.ThreadView{
		ID:        id,
		Content:   "content " + id,
		CreatedAt: createdAt,
		LikeCount: likeCount,
		LikedByMe: likedByMe,
		User:      models.UserCompact{ID: "alice", Name: "Alice"},
	}
}

func TestApplyLikeTogglePatchesEverySnapshot(t *testing.T) {
	cache := New()
	// the same thread cached in home, profile and reply views
	cache.Register(HomeKey("viewer", false), "", []models.ThreadView{view("t1", 3, false), view("t2", 0, false)})
	cache.Register(HomeKey("viewer", true), "", []models.ThreadView{view("t1", 3, false)})
	cache.Register(ProfileKey("viewer", "alice"), "", []models.ThreadView{view("t1", 3, false)})
	cache.Register(ReplyKey("viewer", "parent"), "cursor2", []models.ThreadView{view("t1", 3, false)})

	cache.ApplyLikeToggle("t1", true)

	for _, key := range []Key{
		HomeKey("viewer", false),
		HomeKey("viewer", true),
		ProfileKey("viewer", "alice"),
		ReplyKey("viewer", "parent"),
	} {
		for _, page := range cache.Pages(key) {
			for _, thread := range page {
				if thread.ID == "t1" {
					if thread.LikeCount != 4 || !thread.LikedByMe {
						t.Fatalf("key %s: t1 not patched: %+v", key, thread)
					}
				} else {
					if thread.LikeCount != 0 || thread.LikedByMe {
						t.Fatalf("key %s: unrelated thread touched: %+v", key, thread)
					}
				}
			}
		}
	}

	cache.ApplyLikeToggle("t1", false)
	pages := cache.Pages(HomeKey("viewer", false))
	if pages[0][0].LikeCount != 3 || pages[0][0].LikedByMe {
		t.Fatalf("unlike not applied: %+v", pages[0][0])
	}
}

func TestPrependOnlyTouchesFirstPage(t *testing.T) {
	cache := New()
	key := HomeKey("viewer", false)
	cache.Register(key, "", []models.ThreadView{view("t1", 0, false)})
	cache.Register(key, "cursor2", []models.ThreadView{view("t2", 0, false)})

	cache.Prepend(key, view("new", 0, false))

	pages := cache.Pages(key)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if len(pages[0]) != 2 || pages[0][0].ID != "new" || pages[0][1].ID != "t1" {
		t.Fatalf("first page not prepended: %+v", pages[0])
	}
	if len(pages[1]) != 1 || pages[1][0].ID != "t2" {
		t.Fatalf("second page must be untouched: %+v", pages[1])
	}
}

func TestPrependIsNoOpWithoutRegisteredFirstPage(t *testing.T) {
	cache := New()
	cache.Prepend(HomeKey("viewer", false), view("new", 0, false))
	if pages := cache.Pages(HomeKey("viewer", false)); pages != nil {
		t.Fatalf("expected no snapshot, got %+v", pages)
	}
}

func TestRegisterReplacesPageSnapshot(t *testing.T) {
	cache := New()
	key := HomeKey("viewer", false)
	cache.Register(key, "", []models.ThreadView{view("t1", 0, false)})
	cache.Register(key, "", []models.ThreadView{view("t2", 0, false)})

	pages := cache.Pages(key)
	if len(pages) != 1 || len(pages[0]) != 1 || pages[0][0].ID != "t2" {
		t.Fatalf("re-register should replace the page: %+v", pages)
	}
}

func TestInvalidateDropsSnapshots(t *testing.T) {
	cache := New()
	key := HomeKey("viewer", false)
	cache.Register(key, "", []models.ThreadView{view("t1", 0, false)})
	cache.Invalidate(key)
	if pages := cache.Pages(key); pages != nil {
		t.Fatalf("expected dropped snapshot, got %+v", pages)
	}
}

func TestPagesReturnsCopies(t *testing.T) {
	cache := New()
	key := HomeKey("viewer", false)
	cache.Register(key, "", []models.ThreadView{view("t1", 0, false)})

	pages := cache.Pages(key)
	pages[0][0].LikeCount = 99

	fresh := cache.Pages(key)
	if fresh[0][0].LikeCount != 0 {
		t.Fatal("Pages must return copies, not aliases into the cache")
	}
}
