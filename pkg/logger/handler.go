package logger

import (
	"context"
	"errors"
	"log/slog"
)

// sink is one destination with its own minimum level.
type sink struct {
	handler slog.Handler
	min     slog.Leveler
}

// fanoutHandler forwards each record to every sink whose minimum level it meets.
type fanoutHandler struct {
	sinks []sink
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if level >= s.min.Level() && s.handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range h.sinks {
		if r.Level < s.min.Level() || !s.handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]sink, len(h.sinks))
	for i, s := range h.sinks {
		out[i] = sink{handler: s.handler.WithAttrs(attrs), min: s.min}
	}
	return &fanoutHandler{sinks: out}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	out := make([]sink, len(h.sinks))
	for i, s := range h.sinks {
		out[i] = sink{handler: s.handler.WithGroup(name), min: s.min}
	}
	return &fanoutHandler{sinks: out}
}
