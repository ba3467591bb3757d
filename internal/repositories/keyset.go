package repositories

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor marks the last row seen by a paginated feed query. Rows are ordered by
// the composite key (created_at, id); the id disambiguates rows sharing a
// created_at value, so both fields must always be compared together.
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// EncodeCursor serializes a cursor into the opaque token handed to clients.
func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque cursor token back into a Cursor.
func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor token: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor token: %w", err)
	}
	return &c, nil
}

// FeedFilter selects which threads a feed page query returns.
type FeedFilter int

const (
	// FeedAll matches every active thread.
	FeedAll FeedFilter = iota
	// FeedFollowing restricts FeedAll to authors the viewer follows.
	FeedFollowing
	// FeedByAuthor restricts to a single author's threads.
	FeedByAuthor
	// FeedRepliesOf restricts to direct replies of one thread.
	FeedRepliesOf
)

// ThreadPageQuery describes one keyset-paginated page fetch. Limit is the raw
// row count to fetch; callers pass their page size plus one so the extra row
// signals that another page exists. Reverse flips both ordering keys together,
// never just created_at, or ordering would be unstable across pages.
type ThreadPageQuery struct {
	ViewerID string // empty for anonymous viewers
	Filter   FeedFilter
	AuthorID string // FeedByAuthor
	ParentID string // FeedRepliesOf
	Limit    int
	Cursor   *Cursor
	Reverse  bool
}
