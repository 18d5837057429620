package collector_test

import (
	"context"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/bootlab/bootdata/pkg/collector"
	"github.com/bootlab/bootdata/pkg/config"
	"github.com/bootlab/bootdata/pkg/probe"
	"github.com/bootlab/bootdata/pkg/report"
)

// fakeProbe simulates a probe with fixed output.
type fakeProbe struct {
	name string
	out  string
	ok   bool
}

func (p *fakeProbe) Name() string { return p.name }

func (p *fakeProbe) Collect(context.Context) ([]byte, bool) {
	return []byte(p.out), p.ok
}

func newReport(t *testing.T) *report.Report {
	t.Helper()
	rep, err := report.Create(t.TempDir(), "lab_one", "m1", "dev", nil, time.Now())
	if err != nil {
		t.Fatalf("failed to create report: %v", err)
	}
	return rep
}

func TestCollect_SectionsInOrder(t *testing.T) {
	probes := []probe.Probe{
		&fakeProbe{name: "uptime", out: "up 1 min\n", ok: true},
		&fakeProbe{name: "memory", out: "Mem: 512\n", ok: true},
		&fakeProbe{name: "mounts", out: "/dev/root on /\n", ok: true},
	}

	rep := newReport(t)
	c := &collector.Collector{Probes: probes}
	if err := c.Collect(context.Background(), rep); err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	content, err := os.ReadFile(rep.Path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	text := string(content)

	// Each delimiter exactly once, in probe order, each body verbatim.
	lastIdx := -1
	for _, p := range probes {
		delim := "== " + p.Name() + " =="
		if n := strings.Count(text, delim); n != 1 {
			t.Errorf("delimiter %q appears %d times, want 1", delim, n)
		}
		idx := strings.Index(text, delim)
		if idx < lastIdx {
			t.Errorf("section %q out of order", p.Name())
		}
		lastIdx = idx

		section := regexp.MustCompile(regexp.QuoteMeta(delim) + `\n((?s).*?)\n\n`).FindStringSubmatch(text)
		if section == nil {
			t.Fatalf("section %q not properly delimited", p.Name())
		}
	}

	for _, p := range []string{"up 1 min\n", "Mem: 512\n", "/dev/root on /\n"} {
		if !strings.Contains(text, p) {
			t.Errorf("report missing body %q", p)
		}
	}
}

func TestCollect_ProbeFailureIsNotFatal(t *testing.T) {
	probes := []probe.Probe{
		&fakeProbe{name: "uptime", out: "up 1 min\n", ok: true},
		&fakeProbe{name: "memory", out: "free: command not found\n", ok: false},
		&fakeProbe{name: "mounts", out: "/dev/root on /\n", ok: true},
	}

	rep := newReport(t)
	c := &collector.Collector{Probes: probes}
	if err := c.Collect(context.Background(), rep); err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	content, _ := os.ReadFile(rep.Path)
	text := string(content)

	if !strings.Contains(text, "free: command not found") {
		t.Error("failing probe's error text must become section content")
	}
	if !strings.Contains(text, "== mounts ==") {
		t.Error("sections after a failing probe must still be written")
	}
}

func TestCollect_EmptyProbeOutput(t *testing.T) {
	rep := newReport(t)
	c := &collector.Collector{Probes: []probe.Probe{
		&fakeProbe{name: "quietone", out: "", ok: true},
	}}
	if err := c.Collect(context.Background(), rep); err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	content, _ := os.ReadFile(rep.Path)
	if !strings.Contains(string(content), "== quietone ==") {
		t.Error("empty probe output must still produce a delimited section")
	}
}

func TestDefaultFactory_ProbeOrder(t *testing.T) {
	opts := config.NewOptions()
	opts.Lab = "lab_one"
	opts.Machine = "m1"

	f := collector.NewDefaultFactory(opts, "dev", []string{"-l", "lab-one"})
	probes := f.Probes(context.Background())

	want := []string{
		"uptime", "metadata", "kernel", "os-release", "memory",
		"disk", "mounts", "ps", "cpuinfo", "config", "dmesg",
	}

	if len(probes) != len(want) {
		t.Fatalf("got %d probes, want %d", len(probes), len(want))
	}
	for i, name := range want {
		if probes[i].Name() != name {
			t.Errorf("probe %d = %q, want %q", i, probes[i].Name(), name)
		}
	}
}

func TestDefaultFactory_RunMetadata(t *testing.T) {
	opts := config.NewOptions()
	opts.Lab = "lab_one"
	opts.Machine = "m1"

	f := collector.NewDefaultFactory(opts, "1.2.3", []string{"-l", "lab-one", "-m", "m1"})

	var metadata probe.Probe
	for _, p := range f.Probes(context.Background()) {
		if p.Name() == "metadata" {
			metadata = p
		}
	}
	if metadata == nil {
		t.Fatal("metadata probe not found")
	}

	out, ok := metadata.Collect(context.Background())
	if !ok {
		t.Error("metadata probe must not fail")
	}
	for _, want := range []string{"version: 1.2.3", "args: -l lab-one -m m1", "lab: lab_one", "machine: m1"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("metadata output missing %q:\n%s", want, out)
		}
	}
}
