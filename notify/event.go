package notify

// EventKind discriminates the frames a subscriber can receive.
type EventKind string

const (
	KindConnected      EventKind = "connected"
	KindNewPendingPost EventKind = "new_pending_post"
	KindHeartbeat      EventKind = "heartbeat"
)

// Event is anything deliverable through a mailbox.
type Event interface {
	Kind() EventKind
}

// Connected is the sentinel every fresh subscription receives first.
type Connected struct{}

func (Connected) Kind() EventKind { return KindConnected }

// NewPendingPost announces freshly submitted content to moderators.
type NewPendingPost struct {
	PostID   int64  `json:"post_id"`
	Title    string `json:"title"`
	AuthorID int64  `json:"author_id"`
}

func (NewPendingPost) Kind() EventKind { return KindNewPendingPost }

// Heartbeat carries no payload; it only keeps an idle stream alive.
type Heartbeat struct{}

func (Heartbeat) Kind() EventKind { return KindHeartbeat }
