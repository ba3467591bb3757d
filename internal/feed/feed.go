// Package feed computes the paginated feed views: home, following, profile,
// reply and ancestor feeds all share one keyset-paginated page fetch and only
// differ in filter and direction.
package feed

import (
	"context"

	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/repositories"
)

// Engine composes the thread store's page queries into the feed variants.
type Engine struct {
	threads repositories.ThreadRepository
}

// NewEngine creates a new feed Engine
func NewEngine(threads repositories.ThreadRepository) *Engine {
	return &Engine{threads: threads}
}

// HomeFeed returns a page of all active threads, newest first. When the viewer
// is authenticated and asks for onlyFollowing, the page is restricted to
// authors the viewer follows; anonymous viewers get the unfiltered feed.
func (e *Engine) HomeFeed(ctx context.Context, viewerID string, onlyFollowing bool, limit int, cursor *repositories.Cursor) ([]models.ThreadView, *repositories.Cursor, error) {
	filter := repositories.FeedAll
	if onlyFollowing && viewerID != "" {
		filter = repositories.FeedFollowing
	}
	return e.page(ctx, repositories.ThreadPageQuery{
		ViewerID: viewerID,
		Filter:   filter,
		Cursor:   cursor,
	}, limit)
}

// ProfileFeed returns a page of one author's active threads, newest first.
func (e *Engine) ProfileFeed(ctx context.Context, viewerID, authorID string, limit int, cursor *repositories.Cursor) ([]models.ThreadView, *repositories.Cursor, error) {
	return e.page(ctx, repositories.ThreadPageQuery{
		ViewerID: viewerID,
		Filter:   repositories.FeedByAuthor,
		AuthorID: authorID,
		Cursor:   cursor,
	}, limit)
}

// ReplyFeed returns a page of direct replies to a thread, oldest first so
// replies read chronologically under their parent.
func (e *Engine) ReplyFeed(ctx context.Context, viewerID, threadID string, limit int, cursor *repositories.Cursor) ([]models.ThreadView, *repositories.Cursor, error) {
	return e.page(ctx, repositories.ThreadPageQuery{
		ViewerID: viewerID,
		Filter:   repositories.FeedRepliesOf,
		ParentID: threadID,
		Cursor:   cursor,
		Reverse:  true,
	}, limit)
}

// ParentFeed walks the ancestor chain upward from threadID and returns up to
// limit ancestors ordered root-first for stacking above the thread. The cursor
// is the previous page's oldest returned ancestor id; the continuation resumes
// by looking up that ancestor's parent. The walk is a capped loop, never
// recursion: a corrupted cyclic chain terminates at the cap like any other
// page, it is not detected separately.
func (e *Engine) ParentFeed(ctx context.Context, viewerID, threadID string, limit int, cursor string) ([]models.ThreadView, string, error) {
	childID := threadID
	if cursor != "" {
		childID = cursor
	}

	var chain []models.ThreadView
	for i := 0; i < limit+1; i++ {
		row, err := e.threads.FindParent(ctx, childID, viewerID)
		if err != nil {
			return nil, "", err
		}
		if row == nil {
			// reached a root (or a broken chain); clean termination
			break
		}
		chain = append(chain, viewFromRow(*row))
		childID = row.ID
	}

	nextCursor := ""
	if len(chain) > limit {
		chain = chain[:limit]
		nextCursor = chain[len(chain)-1].ID
	}

	// The chain accumulates closest-parent first; flip it so the page reads
	// root -> immediate parent. Only this page is reversed, continuation
	// ordering across pages is the UI's concern.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nextCursor, nil
}

// ThreadDetail returns a single feed-shaped thread, deleted or not.
func (e *Engine) ThreadDetail(ctx context.Context, viewerID, threadID string) (*models.ThreadView, error) {
	row, err := e.threads.GetThreadRow(ctx, threadID, viewerID)
	if err != nil {
		return nil, err
	}
	view := viewFromRow(*row)
	return &view, nil
}

// page fetches limit+1 rows and uses the extra row purely as a lookahead: when
// present it is dropped and the last returned row becomes the next cursor, so
// the following page starts strictly after everything already delivered.
func (e *Engine) page(ctx context.Context, q repositories.ThreadPageQuery, limit int) ([]models.ThreadView, *repositories.Cursor, error) {
	q.Limit = limit + 1
	rows, err := e.threads.ListThreads(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *repositories.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = &repositories.Cursor{ID: last.ID, CreatedAt: last.CreatedAt}
	}

	threads := make([]models.ThreadView, len(rows))
	for i, row := range rows {
		threads[i] = viewFromRow(row)
	}
	return threads, nextCursor, nil
}

func viewFromRow(row repositories.ThreadRow) models.ThreadView {
	return models.ThreadView{
		ID:         row.ID,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
		LikeCount:  row.LikeCount,
		ReplyCount: row.ReplyCount,
		LikedByMe:  row.LikedByMe,
		User: models.UserCompact{
			ID:    row.UserID,
			Name:  row.UserName,
			Image: row.UserImage,
		},
	}
}
