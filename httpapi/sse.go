package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsroom/notify"
)

// NotificationStream serves the server-sent-events feed for moderators.
// Each subscriber gets its own mailbox; the first frame is always the
// connected sentinel, and idle connections receive comment lines as
// keep-alives.
func (h *Handler) NotificationStream(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	sub := h.notifier.Subscribe()
	defer sub.Close()

	ctx := c.Request.Context()
	for {
		event, err := sub.Next(ctx)
		if err != nil {
			// Client went away.
			return
		}

		if event.Kind() == notify.KindHeartbeat {
			if _, err := fmt.Fprint(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
			continue
		}

		payload, err := marshalEvent(event)
		if err != nil {
			h.log.Error("marshal notification", "kind", event.Kind(), "error", err)
			continue
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

// marshalEvent flattens the event into a single JSON object carrying a
// type discriminator alongside the event fields.
func marshalEvent(event notify.Event) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = string(event.Kind())
	return json.Marshal(fields)
}
