package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// Renders a record to bytes, including the trailing newline.
type Formatter interface {
	Format(r slog.Record, groups []string, attrs []slog.Attr) []byte
}

// A record captured before [Handler.Flush].
type pending struct {
	record slog.Record
	groups []string
	attrs  []slog.Attr
}

// State shared between a handler and every handler derived from it.
type shared struct {
	mu        sync.Mutex
	level     slog.LevelVar
	formatter Formatter
	stream    io.Writer
	buffered  []pending
	flushed   bool
}

// A slog handler with deferred configuration.
//
// Handlers derived through WithAttrs and WithGroup share level, formatter,
// stream, and buffer with their parent.
type Handler struct {
	state  *shared
	groups []string
	attrs  []slog.Attr
}

// Creates a buffering [Handler] that writes plain text to stderr once
// flushed.
func NewHandler() *Handler {
	return &Handler{state: &shared{
		formatter: NewPrettyFormatter(false),
		stream:    os.Stderr,
	}}
}

// Sets the minimum level. Buffered records below it are dropped on flush.
func (h *Handler) SetLevel(level slog.Level) {
	h.state.level.Set(level)
}

// Returns the minimum level.
func (h *Handler) Level() slog.Level {
	return h.state.level.Level()
}

// Sets the formatter.
func (h *Handler) SetFormatter(f Formatter) {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.formatter = f
}

// Sets the output stream.
func (h *Handler) SetStream(w io.Writer) {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.stream = w
}

// Writes buffered records and stops buffering.
//
// Calling Flush again is a no-op.
func (h *Handler) Flush() {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if h.state.flushed {
		return
	}

	for _, p := range h.state.buffered {
		if p.record.Level >= h.state.level.Level() {
			h.write(p)
		}
	}

	h.state.buffered = nil
	h.state.flushed = true
}

// Reports whether records at level are handled.
//
// Everything is accepted until the handler is flushed, since the final level
// is not known yet.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	h.state.mu.Lock()
	flushed := h.state.flushed
	h.state.mu.Unlock()

	return !flushed || level >= h.state.level.Level()
}

// Buffers or writes the record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	p := pending{record: r.Clone(), groups: h.groups, attrs: h.attrs}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if !h.state.flushed {
		h.state.buffered = append(h.state.buffered, p)
		return nil
	}

	return h.write(p)
}

// Returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &Handler{
		state:  h.state,
		groups: h.groups,
		attrs:  append(slices.Clip(h.attrs), attrs...),
	}
}

// Returns a handler that prefixes records with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		state:  h.state,
		groups: append(slices.Clip(h.groups), name),
		attrs:  h.attrs,
	}
}

// Formats and writes a record. Callers hold the state lock.
func (h *Handler) write(p pending) error {
	_, err := h.state.stream.Write(h.state.formatter.Format(p.record, p.groups, p.attrs))
	return err
}
