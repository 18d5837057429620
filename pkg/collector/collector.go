// Package collector runs the ordered probe list and writes the report.
package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/bootlab/bootdata/pkg/probe"
	"github.com/bootlab/bootdata/pkg/report"
)

// Collector appends one section per probe to a report, strictly in probe
// order. A probe failure only shapes that section's content; collection
// must be maximally complete even on minimal systems missing some
// utilities, so the run continues regardless. Only report write failures
// abort.
type Collector struct {
	Probes []probe.Probe
}

// Collect runs every probe in order against rep.
func (c *Collector) Collect(ctx context.Context, rep *report.Report) error {
	start := time.Now()
	defer func() {
		collectionDuration.Observe(time.Since(start).Seconds())
	}()

	for _, p := range c.Probes {
		probeStart := time.Now()
		out, ok := p.Collect(ctx)
		probeDuration.WithLabelValues(p.Name()).Observe(time.Since(probeStart).Seconds())

		if !ok {
			slog.Debug("probe failed, attaching its output as section content", "probe", p.Name())
		}

		if err := rep.AddSection(p.Name(), out); err != nil {
			collectionTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	collectionTotal.WithLabelValues("success").Inc()
	sectionCount.Set(float64(len(c.Probes)))

	slog.Debug("report assembly complete", "sections", len(c.Probes), "path", rep.Path)
	return nil
}
