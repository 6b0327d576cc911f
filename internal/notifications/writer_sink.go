package notifications

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterSink prints one human-readable line per notification, e.g. to a terminal.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Notify(_ context.Context, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "%s: %s\n", n.Severity, n.Message)
}
