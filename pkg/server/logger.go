package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LogEntry is one captured log record of a research run.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// CaptureHandler is a slog.Handler that keeps the records of a single run in memory
// and forwards them to Next when set. Handlers derived through WithAttrs and WithGroup
// share the same buffer.
type CaptureHandler struct {
	Next slog.Handler

	store *logStore
	attrs []slog.Attr
	group string
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewCaptureHandler(next slog.Handler) *CaptureHandler {
	return &CaptureHandler{Next: next, store: &logStore{}}
}

func (h *CaptureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true // Log everything
}

func (h *CaptureHandler) Handle(ctx context.Context, r slog.Record) error {
	meta := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		meta[a.Key] = attrValue(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		meta[key] = attrValue(a)
		return true
	})
	if len(meta) == 0 {
		meta = nil
	}

	h.store.mu.Lock()
	h.store.entries = append(h.store.entries, LogEntry{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
		Metadata:  meta,
	})
	h.store.mu.Unlock()

	if h.Next != nil && h.Next.Enabled(ctx, r.Level) {
		return h.Next.Handle(ctx, r)
	}
	return nil
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	if h.Next != nil {
		c.Next = h.Next.WithAttrs(attrs)
	}
	return &c
}

func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	c := *h
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	if h.Next != nil {
		c.Next = h.Next.WithGroup(name)
	}
	return &c
}

// attrValue keeps errors readable once the entry is marshaled to JSON.
func attrValue(a slog.Attr) any {
	v := a.Value.Resolve().Any()
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

// Entries returns a copy of the captured records in arrival order.
func (h *CaptureHandler) Entries() []LogEntry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]LogEntry{}, h.store.entries...)
}
