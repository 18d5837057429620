package analyze

import (
	"fmt"
	"io"
	"sort"
)

// topEntries is how many initcalls and probes the duration rankings keep.
const topEntries = 10

// Summary aggregates the headline numbers of an analysis.
type Summary struct {
	Initcalls       int   `json:"initcalls" yaml:"initcalls"`
	BeforeUserspace int   `json:"beforeUserspace" yaml:"beforeUserspace"`
	AfterUserspace  int   `json:"afterUserspace" yaml:"afterUserspace"`
	DeferredPending int   `json:"deferredPending" yaml:"deferredPending"`
	Failed          int   `json:"failed" yaml:"failed"`
	TotalBootTimeMS int64 `json:"totalBootTimeMs" yaml:"totalBootTimeMs"`
	InitStartMS     int64 `json:"initStartMs" yaml:"initStartMs"`
}

// DurationRow is one entry in a duration ranking.
type DurationRow struct {
	Name         string `json:"name" yaml:"name"`
	DurationUsec int64  `json:"durationUs" yaml:"durationUs"`
}

// FailureRow is one failed initcall or driver probe.
type FailureRow struct {
	Name   string `json:"name" yaml:"name"`
	Retval int    `json:"retval" yaml:"retval"`
}

// Result is the serializable analysis report.
type Result struct {
	Version      string        `json:"version" yaml:"version"`
	Machine      string        `json:"machine" yaml:"machine"`
	Cmdline      string        `json:"cmdline" yaml:"cmdline"`
	Summary      Summary       `json:"summary" yaml:"summary"`
	TopInitcalls []DurationRow `json:"topInitcalls" yaml:"topInitcalls"`
	TopProbes    []DurationRow `json:"topProbes" yaml:"topProbes"`
	Failed       []FailureRow  `json:"failed" yaml:"failed"`
}

// Report computes the reportable view of the analysis.
func (a *Analysis) Report() *Result {
	res := &Result{
		Version: a.Version,
		Machine: a.Machine,
		Cmdline: a.Cmdline,
	}

	initStart := int64(0)
	if a.Init != nil {
		initStart = a.Init.LastStart()
	}

	var lastEnd int64
	for _, ic := range a.Initcalls {
		res.Summary.Initcalls++
		if a.Init == nil || ic.LastStart() <= initStart {
			res.Summary.BeforeUserspace++
		} else {
			res.Summary.AfterUserspace++
		}
		if ic.Failed() {
			res.Summary.Failed++
			res.Failed = append(res.Failed, FailureRow{Name: ic.Name, Retval: -abs(ic.Retval())})
		}
		if e := ic.LastEnd(); e > lastEnd {
			lastEnd = e
		}
	}

	for _, p := range a.Probes {
		if p.DeferredPending() {
			res.Summary.DeferredPending++
		}
		if p.Failed() {
			res.Summary.Failed++
			res.Failed = append(res.Failed, FailureRow{Name: p.Name, Retval: -abs(p.Retval())})
		}
		if e := p.LastEnd(); e > lastEnd {
			lastEnd = e
		}
	}

	res.Summary.TotalBootTimeMS = lastEnd / 1000
	res.Summary.InitStartMS = initStart / 1000

	for _, ic := range a.Initcalls {
		res.TopInitcalls = append(res.TopInitcalls, DurationRow{Name: ic.Name, DurationUsec: ic.Duration()})
	}
	for _, p := range a.Probes {
		res.TopProbes = append(res.TopProbes, DurationRow{Name: p.Name, DurationUsec: p.Duration()})
	}

	sortRows(res.TopInitcalls)
	sortRows(res.TopProbes)
	if len(res.TopInitcalls) > topEntries {
		res.TopInitcalls = res.TopInitcalls[:topEntries]
	}
	if len(res.TopProbes) > topEntries {
		res.TopProbes = res.TopProbes[:topEntries]
	}

	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].Name < res.Failed[j].Name })

	return res
}

// sortRows orders by duration, longest first, with name as tie breaker so
// output is stable.
func sortRows(rows []DurationRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DurationUsec != rows[j].DurationUsec {
			return rows[i].DurationUsec > rows[j].DurationUsec
		}
		return rows[i].Name < rows[j].Name
	})
}

// RenderText writes the plain text report.
func (r *Result) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, `Linux version: %s
Machine: %s
Command line: %s
Summary:
  %d initcalls have been executed, of which %d before userspace and %d after
  %d deferred probes are pending
  %d initcalls/probes failed
  Total boot time: %dms
  Init start time: %dms

---

`,
		r.Version, r.Machine, r.Cmdline,
		r.Summary.Initcalls, r.Summary.BeforeUserspace, r.Summary.AfterUserspace,
		r.Summary.DeferredPending,
		r.Summary.Failed,
		r.Summary.TotalBootTimeMS,
		r.Summary.InitStartMS,
	)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Top %d initcall durations:\n", topEntries); err != nil {
		return err
	}
	for _, row := range r.TopInitcalls {
		if _, err := fmt.Fprintf(w, " * %s -> %dus\n", row.Name, row.DurationUsec); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n---\n\nTop %d probe durations:\n", topEntries); err != nil {
		return err
	}
	for _, row := range r.TopProbes {
		if _, err := fmt.Fprintf(w, " * %s -> %dus\n", row.Name, row.DurationUsec); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n---\n\nFailed initcalls/probes:\n"); err != nil {
		return err
	}
	for _, row := range r.Failed {
		if _, err := fmt.Fprintf(w, " * %s -> ret = %d\n", row.Name, row.Retval); err != nil {
			return err
		}
	}

	return nil
}
