// Package chat is the per-post broadcast service. A room is the set of
// live connections for one post; rooms are created on first connect and
// pruned when the last connection leaves. The registry map is only ever
// mutated through the Hub's own methods.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"newsroom/domain"
	"newsroom/repositories"
)

const FrameTypeComment = "comment"

// InboundFrame is what a client sends. Unknown types are silently ignored
// so new frame types can be introduced without breaking old servers.
type InboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// OutboundFrame is the broadcast form of a persisted comment.
type OutboundFrame struct {
	Type      string `json:"type"`
	PostID    int64  `json:"post_id"`
	CommentID int64  `json:"comment_id"`
	Content   string `json:"content"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// Conn is one live chat connection able to receive outbound frames.
// Send must be safe for concurrent use by the hub.
type Conn interface {
	Send(frame OutboundFrame) error
}

// Gate answers whether a post is connectable: it must exist, not be
// deleted, and be visible to the connecting actor.
type Gate interface {
	VisiblePost(ctx context.Context, postID int64, actor *domain.Actor) (domain.Post, error)
}

// Censor masks forbidden words in comment content.
type Censor interface {
	Censor(content string) string
}

type Hub struct {
	mu       sync.Mutex
	log      *slog.Logger
	rooms    map[int64]map[Conn]struct{}
	gate     Gate
	comments repositories.ICommentRepository
	censor   Censor
}

func NewHub(log *slog.Logger, gate Gate, comments repositories.ICommentRepository, censor Censor) *Hub {
	return &Hub{
		log:      log,
		rooms:    make(map[int64]map[Conn]struct{}),
		gate:     gate,
		comments: comments,
		censor:   censor,
	}
}

// Connect validates the post through the gate and registers the connection
// in its room, creating the room if this is the first member.
func (h *Hub) Connect(ctx context.Context, postID int64, actor domain.Actor, conn Conn) error {
	if _, err := h.gate.VisiblePost(ctx, postID, &actor); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[postID]
	if !ok {
		room = make(map[Conn]struct{})
		h.rooms[postID] = room
	}
	room[conn] = struct{}{}
	return nil
}

// Disconnect removes the connection from the room. Removing an absent
// connection is a no-op; an emptied room is pruned so the registry never
// accumulates dead entries.
func (h *Hub) Disconnect(postID int64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[postID]
	if !ok {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(h.rooms, postID)
	}
}

// HandleMessage processes one inbound frame. Only comment frames are
// acted on; the comment is persisted first, then the stored record
// (with its assigned id and timestamp) is broadcast to the room.
func (h *Hub) HandleMessage(ctx context.Context, postID int64, actor domain.Actor, frame InboundFrame) error {
	if frame.Type != FrameTypeComment {
		return nil
	}

	content := strings.TrimSpace(frame.Content)
	if content == "" {
		return nil
	}
	content = h.censor.Censor(content)

	comment, err := h.comments.Create(domain.Comment{
		PostID:    postID,
		AuthorID:  actor.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("persist comment: %w", err)
	}

	h.Broadcast(postID, OutboundFrame{
		Type:      FrameTypeComment,
		PostID:    comment.PostID,
		CommentID: comment.ID,
		Content:   comment.Content,
		UserID:    actor.ID,
		Username:  actor.Username,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	})
	return nil
}

// Broadcast snapshots the room's membership, then delivers to each
// snapshotted connection independently. A failed connection is treated as
// dead and removed; delivery to the remaining members continues. A
// connection joining mid-broadcast is simply not in the snapshot.
func (h *Hub) Broadcast(postID int64, frame OutboundFrame) {
	h.mu.Lock()
	conns := lo.Keys(h.rooms[postID])
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Send(frame); err != nil {
			h.log.Warn("Dropping dead chat connection",
				"post_id", postID,
				"error", err)
			h.Disconnect(postID, conn)
		}
	}
}

// RoomSize reports the current membership of a room.
func (h *Hub) RoomSize(postID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[postID])
}
