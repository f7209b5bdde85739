package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Switch turns a logger on and off at run time. The zero Switch is off.
// The page context exposes one through the logging messages.
type Switch struct {
	enabled atomic.Bool
}

// NewSwitch creates a Switch in the given state.
func NewSwitch(enabled bool) *Switch {
	s := &Switch{}
	s.enabled.Store(enabled)
	return s
}

// Enabled reports the current state.
func (s *Switch) Enabled() bool {
	return s.enabled.Load()
}

// Set sets the state and returns it.
func (s *Switch) Set(enabled bool) bool {
	s.enabled.Store(enabled)
	return enabled
}

// Toggle flips the state and returns the new one.
func (s *Switch) Toggle() bool {
	for {
		old := s.enabled.Load()
		if s.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SwitchHandler drops every record while its Switch is off.
type SwitchHandler struct {
	handler slog.Handler
	sw      *Switch
}

// NewSwitchHandler wraps handler with sw.
func NewSwitchHandler(handler slog.Handler, sw *Switch) *SwitchHandler {
	return &SwitchHandler{handler: handler, sw: sw}
}

// Enabled implements slog.Handler.
func (h *SwitchHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.sw.Enabled() && h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SwitchHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.sw.Enabled() {
		return nil
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *SwitchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SwitchHandler{handler: h.handler.WithAttrs(attrs), sw: h.sw}
}

// WithGroup implements slog.Handler.
func (h *SwitchHandler) WithGroup(name string) slog.Handler {
	return &SwitchHandler{handler: h.handler.WithGroup(name), sw: h.sw}
}
