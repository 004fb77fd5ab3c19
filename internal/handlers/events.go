package handlers

import (
	"io"

	apierrors "github.com/adithyakesavan/taskdeck/internal/errors"
	"github.com/adithyakesavan/taskdeck/internal/feedhub"
	"github.com/adithyakesavan/taskdeck/internal/middleware"
	"github.com/gin-gonic/gin"
)

// EventHandler exposes the per-owner change feed as a server-sent-events
// stream. The subscription lives exactly as long as the HTTP connection.
type EventHandler struct {
	hub *feedhub.Hub
}

func NewEventHandler(hub *feedhub.Hub) *EventHandler {
	return &EventHandler{
		hub: hub,
	}
}

// Stream subscribes the caller to their change feed and writes each event as
// an SSE "change" message until the client disconnects.
func (h *EventHandler) Stream(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	ch, cancel := h.hub.Subscribe(userID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	// Flush the headers now so the client sees the stream as established
	// before the first event arrives.
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
