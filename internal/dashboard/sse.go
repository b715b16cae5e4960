package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/teamdesk/internal/session"
	"github.com/zulandar/teamdesk/internal/task"
	"go.uber.org/zap"
)

// Event stream polling intervals.
var (
	summaryInterval   = 2 * time.Second
	heartbeatInterval = 15 * time.Second
)

// handleEvents streams the session's task summary. A summary event is sent
// on connect and again whenever the counts change.
func (s *server) handleEvents(c *gin.Context) {
	sess := current(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
	c.Writer.Flush()

	last, err := lockedSummary(sess)
	if err != nil {
		s.logger.Warn("event stream summary", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	writeSSE(c.Writer, "summary", last)
	c.Writer.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(summaryInterval)
	heartbeat := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			sum, err := lockedSummary(sess)
			if err != nil {
				// The session was swept and its database closed.
				s.logger.Debug("event stream ended", zap.String("session", sess.ID), zap.Error(err))
				return
			}
			if reflect.DeepEqual(sum, last) {
				continue
			}
			last = sum
			writeSSE(c.Writer, "summary", sum)
			c.Writer.Flush()
		}
	}
}

func lockedSummary(sess *session.Session) (task.Summary, error) {
	sess.Lock()
	defer sess.Unlock()
	return sess.Tasks.Summary()
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
