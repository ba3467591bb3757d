package feed

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
)

// fakeThreadStore is an in-memory ThreadRepository mirroring the Postgres
// implementation's ordering and filtering semantics.
type fakeThreadStore struct {
	threads []models.Thread
	likes   map[string][]string // threadID -> userIDs
	follows map[string][]string // followerID -> followingIDs
	users   map[string]models.UserCompact
}

func newFakeThreadStore() *fakeThreadStore {
	return &fakeThreadStore{
		likes:   make(map[string][]string),
		follows: make(map[string][]string),
		users:   make(map[string]models.UserCompact),
	}
}

func (s *fakeThreadStore) CreateThread(_ context.Context, thread *models.Thread) error {
	if thread.ID == "" {
		thread.ID = fmt.Sprintf("t%03d", len(s.threads))
	}
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now().UTC()
	}
	s.threads = append(s.threads, *thread)
	return nil
}

func (s *fakeThreadStore) GetThreadByID(_ context.Context, id string) (*models.Thread, error) {
	for i := range s.threads {
		if s.threads[i].ID == id {
			t := s.threads[i]
			return &t, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeThreadStore) GetThreadRow(ctx context.Context, id, viewerID string) (*repositories.ThreadRow, error) {
	t, err := s.GetThreadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	row := s.row(*t, viewerID)
	return &row, nil
}

func (s *fakeThreadStore) ListThreads(_ context.Context, q repositories.ThreadPageQuery) ([]repositories.ThreadRow, error) {
	var matched []models.Thread
	for _, t := range s.threads {
		if t.Status != models.ThreadActive {
			continue
		}
		switch q.Filter {
		case repositories.FeedFollowing:
			if !contains(s.follows[q.ViewerID], t.UserID) {
				continue
			}
		case repositories.FeedByAuthor:
			if t.UserID != q.AuthorID {
				continue
			}
		case repositories.FeedRepliesOf:
			if t.ParentThreadID == nil || *t.ParentThreadID != q.ParentID {
				continue
			}
		}
		if q.Cursor != nil {
			cursorKey := models.Thread{ID: q.Cursor.ID, CreatedAt: q.Cursor.CreatedAt}
			if q.Reverse {
				if !keyLess(cursorKey, t) {
					continue
				}
			} else {
				if !keyLess(t, cursorKey) {
					continue
				}
			}
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if q.Reverse {
			return keyLess(matched[i], matched[j])
		}
		return keyLess(matched[j], matched[i])
	})
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	rows := make([]repositories.ThreadRow, len(matched))
	for i, t := range matched {
		rows[i] = s.row(t, q.ViewerID)
	}
	return rows, nil
}

func (s *fakeThreadStore) FindParent(ctx context.Context, childID, viewerID string) (*repositories.ThreadRow, error) {
	child, err := s.GetThreadByID(ctx, childID)
	if err != nil || child.ParentThreadID == nil {
		return nil, nil
	}
	// no status filter: deleted intermediate ancestors stay reachable
	parent, err := s.GetThreadByID(ctx, *child.ParentThreadID)
	if err != nil {
		return nil, nil
	}
	row := s.row(*parent, viewerID)
	return &row, nil
}

func (s *fakeThreadStore) SoftDeleteThread(_ context.Context, id string) error {
	for i := range s.threads {
		if s.threads[i].ID == id {
			s.threads[i].Status = models.ThreadDeleted
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *fakeThreadStore) CountByAuthor(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, t := range s.threads {
		if t.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeThreadStore) row(t models.Thread, viewerID string) repositories.ThreadRow {
	replyCount := 0
	for _, c := range s.threads {
		if c.ParentThreadID != nil && *c.ParentThreadID == t.ID {
			replyCount++
		}
	}
	user := s.users[t.UserID]
	if user.ID == "" {
		user = models.UserCompact{ID: t.UserID}
	}
	return repositories.ThreadRow{
		ID:         t.ID,
		Content:    t.Content,
		CreatedAt:  t.CreatedAt,
		LikeCount:  len(s.likes[t.ID]),
		ReplyCount: replyCount,
		LikedByMe:  viewerID != "" && contains(s.likes[t.ID], viewerID),
		UserID:     t.UserID,
		UserName:   user.Name,
		UserImage:  user.Image,
	}
}

func keyLess(a, b models.Thread) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func seedThread(store *fakeThreadStore, id, userID string, createdAt time.Time, parentID *string) {
	store.threads = append(store.threads, models.Thread{
		ID:             id,
		Content:        "content " + id,
		UserID:         userID,
		ParentThreadID: parentID,
		Status:         models.ThreadActive,
		CreatedAt:      createdAt,
	})
}

func TestHomeFeedPaginationNoDuplicatesNoLoss(t *testing.T) {
	store := newFakeThreadStore()
	// 25 threads, five per timestamp, so every page boundary can land on a tie
	for i := 0; i < 25; i++ {
		seedThread(store, fmt.Sprintf("t%03d", i), "author", baseTime.Add(time.Duration(i/5)*time.Minute), nil)
	}
	engine := NewEngine(store)
	ctx := context.Background()

	seen := make(map[string]bool)
	var all []models.ThreadView
	var cursor *repositories.Cursor
	pages := 0
	for {
		threads, next, err := engine.HomeFeed(ctx, "", false, 10, cursor)
		if err != nil {
			t.Fatalf("HomeFeed: %v", err)
		}
		for _, thread := range threads {
			if seen[thread.ID] {
				t.Fatalf("duplicate thread %s across pages", thread.ID)
			}
			seen[thread.ID] = true
		}
		all = append(all, threads...)
		pages++
		if next == nil {
			break
		}
		cursor = next
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
	}

	if len(all) != 25 {
		t.Fatalf("expected 25 threads across pages, got %d", len(all))
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	// full ordering: (createdAt, id) strictly descending
	for i := 1; i < len(all); i++ {
		prev, curr := all[i-1], all[i]
		if curr.CreatedAt.After(prev.CreatedAt) ||
			(curr.CreatedAt.Equal(prev.CreatedAt) && curr.ID > prev.ID) {
			t.Fatalf("ordering violated at index %d: %s/%v then %s/%v", i, prev.ID, prev.CreatedAt, curr.ID, curr.CreatedAt)
		}
	}
}

func TestHomeFeedEmptyResult(t *testing.T) {
	engine := NewEngine(newFakeThreadStore())
	threads, next, err := engine.HomeFeed(context.Background(), "", false, 10, nil)
	if err != nil {
		t.Fatalf("HomeFeed: %v", err)
	}
	if len(threads) != 0 {
		t.Fatalf("expected empty page, got %d threads", len(threads))
	}
	if next != nil {
		t.Fatalf("expected nil cursor on empty feed, got %+v", next)
	}
}

func TestHomeFeedRoundTrip(t *testing.T) {
	store := newFakeThreadStore()
	engine := NewEngine(store)
	ctx := context.Background()

	thread := &models.Thread{Content: "hello", UserID: "alice"}
	if err := store.CreateThread(ctx, thread); err != nil {
		t.Fatalf("CreateThread: %v", err)
	}

	threads, _, err := engine.HomeFeed(ctx, "alice", false, 10, nil)
	if err != nil {
		t.Fatalf("HomeFeed: %v", err)
	}
	if len(threads) != 1 || threads[0].ID != thread.ID {
		t.Fatalf("expected created thread in first page, got %+v", threads)
	}
	if threads[0].LikeCount != 0 || threads[0].LikedByMe {
		t.Fatalf("fresh thread should have likeCount=0 likedByMe=false, got %+v", threads[0])
	}
}

func TestFollowingFeedFilterAndAnonymousDegrade(t *testing.T) {
	store := newFakeThreadStore()
	seedThread(store, "ta", "alice", baseTime, nil)
	seedThread(store, "tb", "bob", baseTime.Add(time.Minute), nil)
	store.follows["carol"] = []string{"bob"}
	engine := NewEngine(store)
	ctx := context.Background()

	threads, _, err := engine.HomeFeed(ctx, "carol", true, 10, nil)
	if err != nil {
		t.Fatalf("HomeFeed: %v", err)
	}
	if len(threads) != 1 || threads[0].ID != "tb" {
		t.Fatalf("following feed should only contain bob's thread, got %+v", threads)
	}

	// anonymous viewer asking for onlyFollowing falls back to the full feed
	threads, _, err = engine.HomeFeed(ctx, "", true, 10, nil)
	if err != nil {
		t.Fatalf("HomeFeed: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("anonymous following feed should degrade to all threads, got %d", len(threads))
	}
}

func TestProfileFeedFiltersAuthor(t *testing.T) {
	store := newFakeThreadStore()
	seedThread(store, "ta", "alice", baseTime, nil)
	seedThread(store, "tb", "bob", baseTime.Add(time.Minute), nil)
	seedThread(store, "tc", "alice", baseTime.Add(2*time.Minute), nil)
	engine := NewEngine(store)

	threads, _, err := engine.ProfileFeed(context.Background(), "", "alice", 10, nil)
	if err != nil {
		t.Fatalf("ProfileFeed: %v", err)
	}
	if len(threads) != 2 || threads[0].ID != "tc" || threads[1].ID != "ta" {
		t.Fatalf("unexpected profile feed: %+v", threads)
	}
}

func TestReplyFeedOldestFirst(t *testing.T) {
	store := newFakeThreadStore()
	seedThread(store, "root", "alice", baseTime, nil)
	rootID := "root"
	seedThread(store, "r1", "bob", baseTime.Add(1*time.Minute), &rootID)
	seedThread(store, "r2", "carol", baseTime.Add(2*time.Minute), &rootID)
	seedThread(store, "r3", "bob", baseTime.Add(3*time.Minute), &rootID)
	engine := NewEngine(store)

	threads, next, err := engine.ReplyFeed(context.Background(), "", "root", 10, nil)
	if err != nil {
		t.Fatalf("ReplyFeed: %v", err)
	}
	if next != nil {
		t.Fatalf("expected no next cursor, got %+v", next)
	}
	got := []string{}
	for _, thread := range threads {
		got = append(got, thread.ID)
	}
	want := []string{"r1", "r2", "r3"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("replies out of order: got %v want %v", got, want)
		}
	}
}

// buildChain seeds root -> c1 -> ... -> cDepth and returns the leaf id.
func buildChain(store *fakeThreadStore, depth int) string {
	seedThread(store, "c0", "alice", baseTime, nil)
	prev := "c0"
	for i := 1; i <= depth; i++ {
		id := fmt.Sprintf("c%d", i)
		parent := prev
		seedThread(store, id, "alice", baseTime.Add(time.Duration(i)*time.Minute), &parent)
		prev = id
	}
	return prev
}

func TestParentFeedReturnsAllAncestorsWhenLimitCovers(t *testing.T) {
	store := newFakeThreadStore()
	leaf := buildChain(store, 5) // leaf c5 has ancestors c4..c0
	engine := NewEngine(store)

	threads, next, err := engine.ParentFeed(context.Background(), "", leaf, 10, "")
	if err != nil {
		t.Fatalf("ParentFeed: %v", err)
	}
	if next != "" {
		t.Fatalf("expected no cursor when limit covers chain, got %q", next)
	}
	got := []string{}
	for _, thread := range threads {
		got = append(got, thread.ID)
	}
	// root-first display order
	want := []string{"c0", "c1", "c2", "c3", "c4"}
	if len(got) != len(want) {
		t.Fatalf("expected %d ancestors, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ancestors out of order: got %v want %v", got, want)
		}
	}
}

func TestParentFeedPaginatesWithoutLoss(t *testing.T) {
	store := newFakeThreadStore()
	leaf := buildChain(store, 5)
	engine := NewEngine(store)
	ctx := context.Background()

	threads, next, err := engine.ParentFeed(ctx, "", leaf, 2, "")
	if err != nil {
		t.Fatalf("ParentFeed: %v", err)
	}
	if len(threads) != 2 || next == "" {
		t.Fatalf("expected 2 ancestors and a cursor, got %d / %q", len(threads), next)
	}

	seen := map[string]bool{}
	total := 0
	cursor := ""
	for pages := 0; pages < 5; pages++ {
		threads, nextCursor, err := engine.ParentFeed(ctx, "", leaf, 2, cursor)
		if err != nil {
			t.Fatalf("ParentFeed: %v", err)
		}
		for _, thread := range threads {
			if seen[thread.ID] {
				t.Fatalf("ancestor %s returned twice", thread.ID)
			}
			seen[thread.ID] = true
			total++
		}
		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}
	if total != 5 {
		t.Fatalf("expected all 5 ancestors across pages, got %d", total)
	}
}

func TestParentFeedWalkIsCapped(t *testing.T) {
	store := newFakeThreadStore()
	// corrupt data: a -> b -> a cycle must terminate at the iteration cap
	bID := "b"
	aID := "a"
	seedThread(store, "a", "alice", baseTime, &bID)
	seedThread(store, "b", "alice", baseTime.Add(time.Minute), &aID)
	engine := NewEngine(store)

	threads, next, err := engine.ParentFeed(context.Background(), "", "a", 3, "")
	if err != nil {
		t.Fatalf("ParentFeed: %v", err)
	}
	if len(threads) != 3 || next == "" {
		t.Fatalf("capped walk should fill the page and signal more, got %d / %q", len(threads), next)
	}
}

func TestSoftDeleteExcludedFromListingsButWalkable(t *testing.T) {
	store := newFakeThreadStore()
	rootID := "c0"
	seedThread(store, "c0", "alice", baseTime, nil)
	seedThread(store, "c1", "alice", baseTime.Add(time.Minute), &rootID)
	midID := "c1"
	seedThread(store, "c2", "bob", baseTime.Add(2*time.Minute), &midID)
	engine := NewEngine(store)
	ctx := context.Background()

	if err := store.SoftDeleteThread(ctx, "c1"); err != nil {
		t.Fatalf("SoftDeleteThread: %v", err)
	}

	threads, _, err := engine.HomeFeed(ctx, "", false, 10, nil)
	if err != nil {
		t.Fatalf("HomeFeed: %v", err)
	}
	for _, thread := range threads {
		if thread.ID == "c1" {
			t.Fatal("soft-deleted thread leaked into home feed")
		}
	}

	threads, _, err = engine.ProfileFeed(ctx, "", "alice", 10, nil)
	if err != nil {
		t.Fatalf("ProfileFeed: %v", err)
	}
	for _, thread := range threads {
		if thread.ID == "c1" {
			t.Fatal("soft-deleted thread leaked into profile feed")
		}
	}

	replies, _, err := engine.ReplyFeed(ctx, "", "c0", 10, nil)
	if err != nil {
		t.Fatalf("ReplyFeed: %v", err)
	}
	for _, thread := range replies {
		if thread.ID == "c1" {
			t.Fatal("soft-deleted thread leaked into reply feed")
		}
	}

	// but the ancestor walk from its still-active child passes through it
	ancestors, _, err := engine.ParentFeed(ctx, "", "c2", 10, "")
	if err != nil {
		t.Fatalf("ParentFeed: %v", err)
	}
	got := []string{}
	for _, thread := range ancestors {
		got = append(got, thread.ID)
	}
	if len(got) != 2 || got[0] != "c0" || got[1] != "c1" {
		t.Fatalf("ancestor walk should include the deleted thread, got %v", got)
	}
}

func TestThreadDetailIncludesViewerLike(t *testing.T) {
	store := newFakeThreadStore()
	seedThread(store, "ta", "alice", baseTime, nil)
	store.likes["ta"] = []string{"bob"}
	store.users["alice"] = models.UserCompact{ID: "alice", Name: "Alice", Image: "img"}
	engine := NewEngine(store)
	ctx := context.Background()

	view, err := engine.ThreadDetail(ctx, "bob", "ta")
	if err != nil {
		t.Fatalf("ThreadDetail: %v", err)
	}
	if view.LikeCount != 1 || !view.LikedByMe {
		t.Fatalf("expected liked view, got %+v", view)
	}
	if view.User.Name != "Alice" {
		t.Fatalf("expected author info, got %+v", view.User)
	}

	view, err = engine.ThreadDetail(ctx, "", "ta")
	if err != nil {
		t.Fatalf("ThreadDetail: %v", err)
	}
	if view.LikedByMe {
		t.Fatal("anonymous viewer must get likedByMe=false")
	}
}
