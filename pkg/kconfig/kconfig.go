// Package kconfig locates the build configuration of the running kernel.
//
// Kernels expose their configuration in several ways depending on how
// they were built and packaged; the candidates are tried in strict
// priority order and the first hit wins. A kernel exposing its config
// nowhere is itself an informative result, reported as a literal message
// rather than an error.
package kconfig

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bootlab/bootdata/pkg/probe"
)

// NotFoundMessage is the section content when no source has the config.
const NotFoundMessage = "kernel configuration not available on this system " +
	"(no /proc/config.gz, configs module, or config file under /lib/modules or /boot)\n"

// Source is one candidate location for the kernel build configuration.
// found=false means the source does not exist on this host; it is never
// an error.
type Source interface {
	Name() string
	Read(ctx context.Context) (content []byte, found bool)
}

// DefaultSources returns the candidate list for the given kernel release,
// in priority order: the in-kernel compressed config, the configs module
// (loaded, read, unloaded), its compressed module file variant, and the
// per-release and generic config files.
func DefaultSources(runner probe.Runner, release string) []Source {
	gz := &ProcConfigGZ{Path: "/proc/config.gz"}
	modDir := filepath.Join("/lib/modules", release)

	return []Source{
		gz,
		&ModuleLoad{
			Runner: runner,
			Load:   []string{"modprobe", "configs"},
			Unload: []string{"rmmod", "configs"},
			Config: gz,
		},
		&ModuleLoad{
			Runner: runner,
			Load:   []string{"insmod", filepath.Join(modDir, "kernel/kernel/configs.ko.gz")},
			Unload: []string{"rmmod", "configs"},
			Config: gz,
		},
		&PlainFile{Path: filepath.Join(modDir, "build/.config")},
		&PlainFile{Path: "/boot/config-" + release},
		&PlainFile{Path: "/boot/config"},
	}
}

// ProcConfigGZ reads the gzip-compressed config the kernel exposes
// directly when built with CONFIG_IKCONFIG_PROC.
type ProcConfigGZ struct {
	Path string
}

func (s *ProcConfigGZ) Name() string { return s.Path }

func (s *ProcConfigGZ) Read(ctx context.Context) ([]byte, bool) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, false
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		slog.Debug("unreadable compressed config", "path", s.Path, "error", err)
		return nil, false
	}

	content, err := io.ReadAll(zr)
	if err != nil {
		slog.Debug("unreadable compressed config", "path", s.Path, "error", err)
		return nil, false
	}

	return content, true
}

// ModuleLoad loads a kernel module that exposes the compressed config,
// reads it through Config, then unloads the module again.
type ModuleLoad struct {
	Runner probe.Runner
	Load   []string
	Unload []string
	Config Source
}

func (s *ModuleLoad) Name() string { return s.Load[0] + " " + s.Load[1] }

func (s *ModuleLoad) Read(ctx context.Context) ([]byte, bool) {
	if out, ok := s.Runner.Run(ctx, s.Load[0], s.Load[1:]...); !ok {
		slog.Debug("module load failed", "command", s.Name(), "output", string(out))
		return nil, false
	}

	content, found := s.Config.Read(ctx)

	// Best effort; a module that will not unload does not invalidate the
	// config that was just read.
	if out, ok := s.Runner.Run(ctx, s.Unload[0], s.Unload[1:]...); !ok {
		slog.Debug("module unload failed", "output", string(out))
	}

	return content, found
}

// PlainFile reads an uncompressed config file.
type PlainFile struct {
	Path string
}

func (s *PlainFile) Name() string { return s.Path }

func (s *PlainFile) Read(ctx context.Context) ([]byte, bool) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, false
	}
	return content, true
}
