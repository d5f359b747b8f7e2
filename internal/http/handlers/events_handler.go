package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-issue-digest/internal/http/middleware"
	"github.com/tbourn/go-issue-digest/internal/utils"
)

const (
	defaultHeartbeatSec = 15
	maxHeartbeatSec     = 300
	reconnectMillis     = 3000

	// EventArtifact names SSE events that carry a notification.
	EventArtifact = "artifact"
	// EventReady is sent once the subscription is registered.
	EventReady = "ready"
)

// StreamEvents godoc
// @ID          streamIssueEvents
// @Summary     Stream artifact notifications
// @Description Server-sent events for one issue. Each "artifact" event carries a notify.Notification as JSON. Delivery is best effort; a slow reader may miss events.
// @Tags        Events
// @Produce     text/event-stream
//
// @Param       id         path   int  true   "Issue ID"  minimum(1) example(101)
// @Param       heartbeat  query  int  false  "Keep-alive comment interval in seconds"  minimum(1) maximum(300) default(15)
//
// @Success     200  {object}  notify.Notification  "stream of artifact events"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /issues/{id}/events [get]
func (h *Handlers) StreamEvents(c *gin.Context) {
	id, valid := issueID(c)
	if !valid {
		return
	}
	sec := utils.Clamp(utils.AtoiDefault(c.Query("heartbeat"), defaultHeartbeatSec), 1, maxHeartbeatSec)

	sub := h.events.Subscribe(id)
	defer sub.Close()
	defer middleware.TrackStream()()

	lg := middleware.LoggerFrom(c)
	lg.Debug().Int64("issue_id", id).Str("subscription", sub.ID).Msg("event stream opened")

	// Streams outlive the server's WriteTimeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		lg.Debug().Err(err).Msg("write deadline not cleared")
	}

	hdr := c.Writer.Header()
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	c.Render(http.StatusOK, sse.Event{Event: EventReady, Retry: reconnectMillis, Data: gin.H{"issue_id": id, "subscription": sub.ID}})
	c.Writer.Flush()

	ticker := time.NewTicker(time.Duration(sec) * time.Second)
	defer ticker.Stop()
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			lg.Debug().Int64("issue_id", id).Msg("event stream closed by client")
			return
		case n, open := <-sub.C:
			if !open {
				return
			}
			c.Render(-1, sse.Event{Id: n.ID, Event: EventArtifact, Data: n})
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
