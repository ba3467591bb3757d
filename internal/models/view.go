package models

import "time"

// ThreadView is a thread shaped for feed responses: row data plus the counts
// and the viewer-specific liked flag computed in the same fetch.
type ThreadView struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	LikeCount  int         `json:"likeCount"`
	ReplyCount int         `json:"replyCount"`
	LikedByMe  bool        `json:"likedByMe"`
	User       UserCompact `json:"user"`
}

// Profile is the response shape for a user profile lookup
type Profile struct {
	Name           string `json:"name"`
	Image          string `json:"image"`
	FollowersCount int64  `json:"followersCount"`
	FollowsCount   int64  `json:"followsCount"`
	ThreadsCount   int64  `json:"threadsCount"`
	IsFollowing    bool   `json:"isFollowing"`
}
