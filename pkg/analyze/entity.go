// Package analyze extracts initcall and driver probe timing from a
// kernel log captured with the initcall_debug boot flag.
package analyze

// errProbeDefer is EPROBE_DEFER as it appears in initcall_debug return
// values; a probe returning it is deferred, not failed.
const errProbeDefer = 517

// Run is one execution of an initcall or driver probe. Times and
// durations are microseconds since boot.
type Run struct {
	Start    int64
	End      int64
	Duration int64
	Retval   int

	ended bool
}

// Running reports whether the run never returned, or returned
// EPROBE_DEFER and is waiting to be retried.
func (r *Run) Running() bool {
	return !r.ended || abs(r.Retval) == errProbeDefer
}

// Failed reports a completed run with a non-zero, non-deferral retval.
func (r *Run) Failed() bool {
	return r.Retval != 0 && !r.Running()
}

// Entity tracks a named initcall or driver probe across its runs.
type Entity struct {
	Name string
	Runs []*Run
}

func (e *Entity) FirstStart() int64 { return e.Runs[0].Start }
func (e *Entity) LastStart() int64  { return e.Runs[len(e.Runs)-1].Start }
func (e *Entity) LastEnd() int64    { return e.Runs[len(e.Runs)-1].End }

// Duration is the total time spent across all runs.
func (e *Entity) Duration() int64 {
	var total int64
	for _, r := range e.Runs {
		total += r.Duration
	}
	return total
}

// WastedTime is the time spent in runs that failed or were deferred.
func (e *Entity) WastedTime() int64 {
	var total int64
	for _, r := range e.Runs {
		if r.Failed() || abs(r.Retval) == errProbeDefer {
			total += r.Duration
		}
	}
	return total
}

func (e *Entity) Retval() int   { return e.Runs[len(e.Runs)-1].Retval }
func (e *Entity) Failed() bool  { return e.Runs[len(e.Runs)-1].Failed() }
func (e *Entity) Running() bool { return e.Runs[len(e.Runs)-1].Running() }

// addStart opens a new run with no recorded end yet.
func (e *Entity) addStart(start int64) {
	e.Runs = append(e.Runs, &Run{Start: start, End: -1})
}

// addEnd completes the most recent open run, or records a detached end
// when every run already completed (a return observed without its call).
func (e *Entity) addEnd(end, duration int64, retval int) {
	last := e.Runs[len(e.Runs)-1]
	if last.ended {
		e.Runs = append(e.Runs, &Run{
			Start: -1, End: end, Duration: duration, Retval: retval, ended: true,
		})
		return
	}
	last.End = end
	last.Duration = duration
	last.Retval = retval
	last.ended = true
}

// addRun records a fully observed run.
func (e *Entity) addRun(start, end, duration int64, retval int) {
	e.Runs = append(e.Runs, &Run{
		Start: start, End: end, Duration: duration, Retval: retval, ended: end >= 0,
	})
}

// Initcall is a kernel init function, possibly provided by a module.
type Initcall struct {
	Entity
	Module string
}

func newInitcall(name string, start int64, module string) *Initcall {
	ic := &Initcall{Module: module}
	ic.Name = name
	ic.addStart(start)
	return ic
}

// DriverProbe is a device driver probe, tracked across deferrals.
type DriverProbe struct {
	Entity
}

func newDriverProbe(name string, start, end, duration int64, retval int) *DriverProbe {
	p := &DriverProbe{}
	p.Name = name
	p.addRun(start, end, duration, retval)
	return p
}

// DeferredPending reports whether the last observed probe run was
// deferred and has not been retried successfully.
func (p *DriverProbe) DeferredPending() bool {
	return abs(p.Retval()) == errProbeDefer
}

// NumDeferred counts the runs that returned EPROBE_DEFER.
func (p *DriverProbe) NumDeferred() int {
	n := 0
	for _, r := range p.Runs {
		if abs(r.Retval) == errProbeDefer {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
