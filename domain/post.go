package domain

import "time"

type PostStatus string

const (
	StatusPending  PostStatus = "pending"
	StatusApproved PostStatus = "approved"
	StatusRejected PostStatus = "rejected"
)

// Post is the content entity governed by the pending/approved/rejected
// lifecycle. Deletion is a timestamp, never a physical removal.
type Post struct {
	ID        int64
	Title     string
	Body      string
	Images    []string
	Status    PostStatus
	AuthorID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (p Post) Deleted() bool {
	return p.DeletedAt != nil
}

// PostPatch is a partial update: only non-nil fields are applied.
type PostPatch struct {
	Title  *string
	Body   *string
	Images *[]string
}

// Apply copies the supplied fields onto the post.
func (patch PostPatch) Apply(p *Post) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Body != nil {
		p.Body = *patch.Body
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
}
