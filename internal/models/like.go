package models

import "time"

// Like represents a like on a thread. One per (thread, user) pair.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ThreadID  string    `json:"thread_id" gorm:"size:36;index;uniqueIndex:idx_thread_user"`
	UserID    string    `json:"user_id" gorm:"size:36;index;uniqueIndex:idx_thread_user"`
	CreatedAt time.Time `json:"created_at"`
}
