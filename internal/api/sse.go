package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// stream writes server-sent "data:" lines, flushing after each one.
type stream struct{ c *gin.Context }

func startStream(c *gin.Context) stream {
	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Status(http.StatusOK)
	return stream{c: c}
}

func (s stream) send(format string, args ...any) {
	_, _ = fmt.Fprintf(s.c.Writer, "data: "+format+"\n\n", args...)
	s.c.Writer.Flush()
}

func (s stream) json(v any) {
	_, _ = s.c.Writer.WriteString("data: ")
	// Encode ends the line, the blank line closes the event.
	_ = json.NewEncoder(s.c.Writer).Encode(v)
	_, _ = s.c.Writer.WriteString("\n")
	s.c.Writer.Flush()
}
