package repositories

import (
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(threadID, userID string) error
	HasUserLikedThread(threadID, userID string) (bool, error)
	GetLikesCountByThreadID(threadID string) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like edge
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike removes the like edge for a (thread, user) pair
func (r *PostgresLikeRepository) DeleteLike(threadID, userID string) error {
	res := r.db.Where("thread_id = ? AND user_id = ?", threadID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasUserLikedThread checks if a user has liked a specific thread
func (r *PostgresLikeRepository) HasUserLikedThread(threadID, userID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("thread_id = ? AND user_id = ?", threadID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikesCountByThreadID retrieves the count of likes for a specific thread
func (r *PostgresLikeRepository) GetLikesCountByThreadID(threadID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("thread_id = ?", threadID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
