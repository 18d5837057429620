package analyze

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoInitcalls is returned when the input contained no initcall trace
// at all, usually meaning the kernel was not booted with initcall_debug
// or was not built to emit it.
var ErrNoInitcalls = errors.New("no initcalls parsed - check your kernel configuration and command line")

// Line shapes emitted by the kernel; the sentinels are cheap pre-filters,
// the expressions extract the fields.
//
//	[    0.000000] Linux version 6.12.0 (gcc ...) #1 SMP ...
//	[    0.000000] Machine model: BeagleBoard.org BeaglePlay
//	[    0.000000] Kernel command line: root=... initcall_debug quiet
//	[    0.466115] calling  pci_sysfs_init+0x0/0xa8 @ 1
//	[    0.466115] initcall pci_sysfs_init+0x0/0xa8 returned 0 after 5 usecs
//	[    0.466115] probe of cpufreq-dt returned 517 after 140 usecs
//	[    1.060329] Run /sbin/init as init process
const (
	versionSentinel  = "Linux version "
	machineSentinel  = "Machine model: "
	cmdlineSentinel  = "Kernel command line: "
	callingSentinel  = "calling  "
	returnedSentinel = "initcall "
	probeSentinel    = "probe of "
	initSentinel     = "as init process"
)

var (
	versionRe  = regexp.MustCompile(`\[([0-9\s]+\.[0-9]+)\] Linux version (.+)`)
	machineRe  = regexp.MustCompile(`\[([0-9\s]+\.[0-9]+)\](?: OF: fdt:)? Machine model: (.+)`)
	cmdlineRe  = regexp.MustCompile(`\[([0-9\s]+\.[0-9]+)\] Kernel command line: (.+)`)
	callingRe  = regexp.MustCompile(`\[([0-9\s]+\.[0-9]+)\] calling  ([0-9a-zA-Z_]+)\+(0x[0-9a-fA-F]+/0x[0-9a-fA-F]+)( \[[a-zA-Z0-9\-_]+\])? @ ([0-9]+)`)
	returnedRe = regexp.MustCompile(`\[([0-9\s]+\.[0-9]+)\] initcall ([0-9a-zA-Z_]+)\+(0x[0-9a-fA-F]+/0x[0-9a-fA-F]+)( \[[a-zA-Z0-9\-_]+\])? returned ([\-0-9]+) after ([0-9]+) usecs`)
	probeRe    = regexp.MustCompile(`\[([0-9\s]+\.[0-9]+)\] probe of ([0-9a-zA-Z_\-\.\:@]+) returned ([\-0-9]+) after ([0-9]+) usecs`)
	initRe     = regexp.MustCompile(`\[([0-9\s]+\.[0-9]+)\] Run ([/0-9a-zA-Z_]+) as init process`)
)

// Analysis is the parsed content of one dmesg capture.
type Analysis struct {
	Version string
	Machine string
	Cmdline string

	Initcalls map[string]*Initcall
	Probes    map[string]*DriverProbe

	// Init is the userspace init process start, or nil if the capture
	// ended before init ran.
	Init *Entity
}

// Parse reads a dmesg stream and extracts initcall and driver probe
// timing. With beforeInit set, ingestion stops at the line announcing the
// init process, restricting the analysis to the kernel side of boot.
func Parse(r io.Reader, beforeInit bool) (*Analysis, error) {
	a := &Analysis{
		Version:   "Unknown",
		Machine:   "Unknown",
		Cmdline:   "Unknown",
		Initcalls: make(map[string]*Initcall),
		Probes:    make(map[string]*DriverProbe),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()

		if stop := a.parseLine(line, lineno, beforeInit); stop {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(a.Initcalls) == 0 {
		return nil, ErrNoInitcalls
	}

	return a, nil
}

// parseLine dispatches one dmesg line. Returns true when ingestion should
// stop (before-init mode reached the init process line).
func (a *Analysis) parseLine(line string, lineno int, beforeInit bool) bool {
	if strings.Contains(line, versionSentinel) {
		if m := versionRe.FindStringSubmatch(line); m != nil {
			a.Version = m[2]
		} else {
			slog.Debug("unparseable version line", "lineno", lineno, "line", line)
		}
	}

	if strings.Contains(line, machineSentinel) {
		if m := machineRe.FindStringSubmatch(line); m != nil {
			a.Machine = m[2]
		} else {
			slog.Debug("unparseable machine line", "lineno", lineno, "line", line)
		}
	}

	if strings.Contains(line, cmdlineSentinel) {
		if m := cmdlineRe.FindStringSubmatch(line); m != nil {
			a.Cmdline = m[2]
		} else {
			slog.Debug("unparseable cmdline line", "lineno", lineno, "line", line)
		}
	}

	if strings.Contains(line, callingSentinel) {
		m := callingRe.FindStringSubmatch(line)
		if m == nil {
			slog.Debug("unparseable calling line", "lineno", lineno, "line", line)
			return false
		}
		t := timestampUsecs(m[1])
		name := m[2]
		module := strings.Trim(strings.TrimSpace(m[4]), "[]")
		if ic, ok := a.Initcalls[name]; ok {
			ic.addStart(t)
		} else {
			a.Initcalls[name] = newInitcall(name, t, module)
		}
		return false
	}

	if strings.Contains(line, returnedSentinel) {
		m := returnedRe.FindStringSubmatch(line)
		if m == nil {
			slog.Debug("unparseable initcall return line", "lineno", lineno, "line", line)
			return false
		}
		t := timestampUsecs(m[1])
		name := m[2]
		retval, _ := strconv.Atoi(m[5])
		duration, _ := strconv.ParseInt(m[6], 10, 64)
		ic, ok := a.Initcalls[name]
		if !ok {
			slog.Debug("return for initcall without a recorded call", "name", name, "lineno", lineno)
			return false
		}
		ic.addEnd(t, duration, retval)
		return false
	}

	if strings.Contains(line, probeSentinel) {
		m := probeRe.FindStringSubmatch(line)
		if m == nil {
			slog.Debug("unparseable probe return line", "lineno", lineno, "line", line)
			return false
		}
		t := timestampUsecs(m[1])
		name := m[2]
		retval, _ := strconv.Atoi(m[3])
		duration, _ := strconv.ParseInt(m[4], 10, 64)
		// Probe returns carry only the end time; the start is derived.
		if p, ok := a.Probes[name]; ok {
			p.addRun(t-duration, t, duration, retval)
		} else {
			a.Probes[name] = newDriverProbe(name, t-duration, t, duration, retval)
		}
		return false
	}

	if a.Init == nil && strings.Contains(line, initSentinel) {
		m := initRe.FindStringSubmatch(line)
		if m == nil {
			slog.Debug("unparseable init line", "lineno", lineno, "line", line)
			return false
		}
		t := timestampUsecs(m[1])
		a.Init = &Entity{Name: m[2]}
		a.Init.addStart(t)
		return beforeInit
	}

	return false
}

// timestampUsecs converts a dmesg "[  123.456789]" timestamp field to
// integer microseconds. The product is rounded, not truncated: the
// second fractions are not exactly representable and truncation would
// shift timestamps by a microsecond.
func timestampUsecs(field string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 1e6))
}
