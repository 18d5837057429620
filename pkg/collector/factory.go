package collector

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/bootlab/bootdata/pkg/config"
	"github.com/bootlab/bootdata/pkg/kconfig"
	"github.com/bootlab/bootdata/pkg/probe"
)

// Factory builds the ordered probe list for a collection run.
// This interface enables dependency injection for testing.
type Factory interface {
	Probes(ctx context.Context) []probe.Probe
}

// DefaultFactory builds the production probe set.
type DefaultFactory struct {
	Runner      probe.Runner
	CmdlinePath string
	Options     *config.Options
	Version     string
	Args        []string
}

// NewDefaultFactory creates a factory running real host commands.
func NewDefaultFactory(opts *config.Options, toolVersion string, args []string) *DefaultFactory {
	return &DefaultFactory{
		Runner:      probe.ExecRunner{},
		CmdlinePath: "/proc/cmdline",
		Options:     opts,
		Version:     toolVersion,
		Args:        args,
	}
}

// Probes returns the fixed section order: uptime, run metadata, kernel
// metadata, OS identification, memory, disk usage, mounts, process list,
// CPU info, kernel build configuration, kernel ring buffer.
func (f *DefaultFactory) Probes(ctx context.Context) []probe.Probe {
	r := f.Runner
	release := kernelRelease(ctx, r)

	return []probe.Probe{
		probe.NewCommand("uptime", r, "uptime"),
		f.runMetadata(),
		f.kernelMetadata(),
		probe.NewFileDump("os-release", "/etc/os-release", "/etc/issue"),
		probe.NewCommand("memory", r, "free"),
		probe.NewCommand("disk", r, "df", "-h"),
		probe.NewCommand("mounts", r, "mount"),
		&probe.ProcessList{Runner: r},
		probe.NewFileDump("cpuinfo", "/proc/cpuinfo"),
		&kconfig.Probe{Sources: kconfig.DefaultSources(r, release)},
		probe.NewCommand("dmesg", r, "dmesg"),
	}
}

// runMetadata identifies the run: tool version, invocation arguments and
// the configured names.
func (f *DefaultFactory) runMetadata() probe.Probe {
	return probe.NewFunc("metadata", func(_ context.Context) ([]byte, bool) {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "version: %s\n", f.Version)
		fmt.Fprintf(&buf, "args: %s\n", strings.Join(f.Args, " "))
		fmt.Fprintf(&buf, "lab: %s\n", f.Options.Lab)
		fmt.Fprintf(&buf, "machine: %s\n", f.Options.Machine)
		fmt.Fprintf(&buf, "date: %s\n", time.Now().UTC().Format(time.RFC3339))
		return buf.Bytes(), true
	})
}

// kernelMetadata captures the running kernel's identity and boot command
// line.
func (f *DefaultFactory) kernelMetadata() probe.Probe {
	return probe.NewFunc("kernel", func(ctx context.Context) ([]byte, bool) {
		var buf bytes.Buffer
		ok := true

		if info, err := host.InfoWithContext(ctx); err == nil {
			fmt.Fprintf(&buf, "hostname: %s\n", info.Hostname)
			fmt.Fprintf(&buf, "kernel: %s %s\n", info.KernelVersion, info.KernelArch)
			fmt.Fprintf(&buf, "os: %s %s %s\n", info.OS, info.Platform, info.PlatformVersion)
		} else {
			fmt.Fprintf(&buf, "host info: %v\n", err)
			ok = false
		}

		cmdline, err := os.ReadFile(f.CmdlinePath)
		if err != nil {
			fmt.Fprintf(&buf, "cmdline: %v\n", err)
			return buf.Bytes(), false
		}
		fmt.Fprintf(&buf, "cmdline: %s\n", strings.TrimSpace(string(cmdline)))

		return buf.Bytes(), ok
	})
}

// kernelRelease resolves the running kernel release string used to locate
// per-release config files.
func kernelRelease(ctx context.Context, r probe.Runner) string {
	if v, err := host.KernelVersion(); err == nil && v != "" {
		return v
	}

	out, ok := r.Run(ctx, "uname", "-r")
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(out))
}
