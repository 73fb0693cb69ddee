package handlers

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/lmsync/pkg/notify"
)

// EventsHandler streams control writes as server-sent events
type EventsHandler struct {
	hub *notify.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Events handles GET /events
// @Summary      Control event stream
// @Description  Server-sent events, one "state" event per control write
// @Tags         controls
// @Produce      text/event-stream
// @Success      200  "Event stream"
// @Router       /events [get]
func (h *EventsHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(events)

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, "state", ev)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

// sendSSEEvent writes an SSE event to the response
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
