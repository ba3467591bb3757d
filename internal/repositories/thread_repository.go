package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// ThreadRow is a thread row shaped for feeds: thread columns plus author info,
// counts and the viewer's liked flag, all computed in the same query so feed
// pages never fan out into per-row lookups.
type ThreadRow struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	LikeCount  int       `json:"like_count"`
	ReplyCount int       `json:"reply_count"`
	LikedByMe  bool      `json:"liked_by_me"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserImage  string    `json:"user_image"`
}

// ThreadRepository defines the interface for thread data operations
type ThreadRepository interface {
	CreateThread(ctx context.Context, thread *models.Thread) error
	GetThreadByID(ctx context.Context, id string) (*models.Thread, error)
	GetThreadRow(ctx context.Context, id, viewerID string) (*ThreadRow, error)
	ListThreads(ctx context.Context, q ThreadPageQuery) ([]ThreadRow, error)
	FindParent(ctx context.Context, childID, viewerID string) (*ThreadRow, error)
	SoftDeleteThread(ctx context.Context, id string) error
	CountByAuthor(ctx context.Context, userID string) (int64, error)
}

// PostgresThreadRepository implements ThreadRepository for PostgreSQL
type PostgresThreadRepository struct {
	db *gorm.DB
}

// NewPostgresThreadRepository creates a new PostgresThreadRepository
func NewPostgresThreadRepository(db *gorm.DB) *PostgresThreadRepository {
	return &PostgresThreadRepository{db: db}
}

// CreateThread creates a new thread row
func (r *PostgresThreadRepository) CreateThread(ctx context.Context, thread *models.Thread) error {
	thread.ID = uuid.NewString()
	thread.CreatedAt = time.Now().UTC()
	thread.Status = models.ThreadActive
	return r.db.WithContext(ctx).Create(thread).Error
}

// GetThreadByID retrieves a thread by ID, deleted or not
func (r *PostgresThreadRepository) GetThreadByID(ctx context.Context, id string) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.WithContext(ctx).First(&thread, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &thread, nil
}

// rowSelect builds the shared feed row projection. The liked_by_me flag is an
// EXISTS over the viewer's own like edge; an empty viewer ID matches nothing.
func (r *PostgresThreadRepository) rowSelect(ctx context.Context, viewerID string) *gorm.DB {
	return r.db.WithContext(ctx).Table("threads").
		Select(`threads.id, threads.content, threads.created_at, threads.user_id,
			users.name AS user_name, users.image AS user_image,
			(SELECT count(*) FROM likes WHERE likes.thread_id = threads.id) AS like_count,
			(SELECT count(*) FROM threads children WHERE children.parent_thread_id = threads.id) AS reply_count,
			EXISTS(SELECT 1 FROM likes WHERE likes.thread_id = threads.id AND likes.user_id = ?) AS liked_by_me`,
			viewerID).
		Joins("JOIN users ON users.id = threads.user_id")
}

// GetThreadRow retrieves a single feed-shaped row by thread ID. Status is not
// filtered here: a deleted thread's detail stays reachable for its reply page.
func (r *PostgresThreadRepository) GetThreadRow(ctx context.Context, id, viewerID string) (*ThreadRow, error) {
	var row ThreadRow
	err := r.rowSelect(ctx, viewerID).Where("threads.id = ?", id).Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// ListThreads fetches one page of feed rows ordered by the (created_at, id)
// composite key. The cursor comparison uses a row-value comparison so rows
// sharing a created_at are neither skipped nor duplicated across pages.
func (r *PostgresThreadRepository) ListThreads(ctx context.Context, q ThreadPageQuery) ([]ThreadRow, error) {
	tx := r.rowSelect(ctx, q.ViewerID).Where("threads.status = ?", models.ThreadActive)

	switch q.Filter {
	case FeedFollowing:
		tx = tx.Where("threads.user_id IN (?)",
			r.db.Table("follows").Select("following_id").Where("follower_id = ?", q.ViewerID))
	case FeedByAuthor:
		tx = tx.Where("threads.user_id = ?", q.AuthorID)
	case FeedRepliesOf:
		tx = tx.Where("threads.parent_thread_id = ?", q.ParentID)
	}

	if q.Cursor != nil {
		if q.Reverse {
			tx = tx.Where("(threads.created_at, threads.id) > (?, ?)", q.Cursor.CreatedAt, q.Cursor.ID)
		} else {
			tx = tx.Where("(threads.created_at, threads.id) < (?, ?)", q.Cursor.CreatedAt, q.Cursor.ID)
		}
	}

	order := "threads.created_at DESC, threads.id DESC"
	if q.Reverse {
		order = "threads.created_at ASC, threads.id ASC"
	}

	var rows []ThreadRow
	err := tx.Order(order).Limit(q.Limit).Scan(&rows).Error
	return rows, err
}

// FindParent looks up the thread whose children contain childID, expressed as
// an existence join. Status is deliberately not filtered: ancestor chains walk
// through soft-deleted intermediate threads. Returns (nil, nil) when childID
// has no parent, which callers treat as clean termination at the root.
func (r *PostgresThreadRepository) FindParent(ctx context.Context, childID, viewerID string) (*ThreadRow, error) {
	var rows []ThreadRow
	err := r.rowSelect(ctx, viewerID).
		Where("EXISTS(SELECT 1 FROM threads children WHERE children.parent_thread_id = threads.id AND children.id = ?)", childID).
		Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SoftDeleteThread flips the thread's status to deleted, keeping the row and
// its like edges so descendants still resolve their parent chain.
func (r *PostgresThreadRepository) SoftDeleteThread(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Thread{}).Where("id = ?", id).
		Update("status", models.ThreadDeleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByAuthor returns how many threads a user has authored
func (r *PostgresThreadRepository) CountByAuthor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Thread{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
