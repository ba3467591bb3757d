package models

import "time"

// ThreadStatus marks whether a thread is visible in listings.
type ThreadStatus int

const (
	ThreadActive  ThreadStatus = 0
	ThreadDeleted ThreadStatus = 1
)

// Thread represents a post. A reply is a Thread whose ParentThreadID points at
// another Thread; root posts have a null parent. Threads are never hard-deleted,
// Status flips to ThreadDeleted instead so replies keep a valid parent chain.
type Thread struct {
	ID             string       `json:"id" gorm:"primaryKey;size:36"`
	Content        string       `json:"content"`
	UserID         string       `json:"user_id" gorm:"size:36;index"`
	ParentThreadID *string      `json:"parent_thread_id,omitempty" gorm:"size:36;index"`
	Status         ThreadStatus `json:"status" gorm:"default:0;index"`
	CreatedAt      time.Time    `json:"created_at" gorm:"index:idx_threads_created_at_id,priority:1"`
}

// CreateThreadRequest defines the request body for creating a new thread
type CreateThreadRequest struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
}

// ReplyThreadRequest defines the request body for replying to a thread
type ReplyThreadRequest struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
}
