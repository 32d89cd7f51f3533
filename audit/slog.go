package audit

import (
	"context"
	"log/slog"
)

// Slog adapts a slog.Logger to the Recorder seam. Events come out as one
// Info line per transition with the event fields as attributes.
type Slog struct {
	Logger *slog.Logger
}

func NewSlog(logger *slog.Logger) *Slog {
	return &Slog{Logger: logger}
}

func (s *Slog) Record(ev Event) {
	if s == nil || s.Logger == nil {
		return
	}
	attrs := make([]slog.Attr, 0, 10)
	attrs = append(attrs, slog.Time("at", ev.Time))
	if ev.PoolID != "" {
		attrs = append(attrs, slog.String("pool", ev.PoolID))
	}
	if ev.Source != "" {
		attrs = append(attrs, slog.String("source", ev.Source))
	}
	if ev.Bits != 0 {
		attrs = append(attrs, slog.Int("bits", ev.Bits))
	}
	if ev.Tier != "" {
		attrs = append(attrs, slog.String("tier", ev.Tier))
	}
	if ev.Label != "" {
		attrs = append(attrs, slog.String("label", ev.Label))
	}
	if ev.SaltRef != "" {
		attrs = append(attrs, slog.String("saltRef", ev.SaltRef))
	}
	if ev.Domain != "" {
		attrs = append(attrs, slog.String("domain", ev.Domain))
	}
	if ev.Detail != "" {
		attrs = append(attrs, slog.String("detail", ev.Detail))
	}
	if len(ev.Lineage) > 0 {
		attrs = append(attrs, slog.Any("lineage", ev.Lineage))
	}
	s.Logger.LogAttrs(context.Background(), slog.LevelInfo, ev.Op.String(), attrs...)
}

var _ Recorder = (*Slog)(nil)
