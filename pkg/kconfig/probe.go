package kconfig

import (
	"context"
	"log/slog"
)

// Probe adapts the source chain to the collector's probe interface. The
// exhausted chain is not a failure: the explanatory message becomes the
// section content.
type Probe struct {
	Sources []Source
}

func (p *Probe) Name() string { return "config" }

func (p *Probe) Collect(ctx context.Context) ([]byte, bool) {
	for _, src := range p.Sources {
		if content, found := src.Read(ctx); found {
			slog.Debug("kernel config found", "source", src.Name())
			return content, true
		}
	}
	return []byte(NotFoundMessage), true
}
