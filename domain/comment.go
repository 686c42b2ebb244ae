package domain

import "time"

// Comment is an immutable chat message attached to one post.
// It is only ever created as a side effect of a broadcast frame.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Content   string
	CreatedAt time.Time
}
