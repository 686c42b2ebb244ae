package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"newsroom/chat"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin in development setups.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a gorilla connection to the hub's Conn interface. The
// mutex serializes writes since the hub broadcasts from the publisher's
// goroutine while the read loop may also write control frames.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) Send(frame chat.OutboundFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteJSON(frame)
}

func (w *wsConn) closePolicy(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	deadline := time.Now().Add(wsWriteTimeout)
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
}

// ChatSocket upgrades the request and joins the caller to the post's
// chat room. Authentication and visibility are checked after the
// upgrade so failures surface as a policy violation close rather than
// an HTTP error page.
func (h *Handler) ChatSocket(c *gin.Context) {
	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "error", err)
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	identity, err := h.verifier.Verify(c.Query("token"))
	if err != nil {
		conn.closePolicy("authentication required")
		return
	}
	actor := identity.Actor()

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		conn.closePolicy("unknown post")
		return
	}

	ctx := c.Request.Context()
	if err := h.hub.Connect(ctx, postID, actor, conn); err != nil {
		conn.closePolicy("post not available")
		return
	}
	defer h.hub.Disconnect(postID, conn)

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			return
		}

		var frame chat.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Malformed frames are dropped, the connection stays up.
			continue
		}
		if err := h.hub.HandleMessage(ctx, postID, actor, frame); err != nil {
			h.log.Warn("chat message", "post_id", postID, "user_id", actor.ID, "error", err)
		}
	}
}
