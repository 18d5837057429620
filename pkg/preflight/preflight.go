// Package preflight validates run preconditions before any probe
// executes, so that a run cannot end up collecting or uploading data that
// is known in advance to be unusable.
package preflight

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bootlab/bootdata/pkg/config"
)

// RequiredBootFlags are the kernel command line tokens the running kernel
// must have been booted with. Without them the captured kernel log lacks
// the boot timing traces the collected data exists for.
var RequiredBootFlags = []string{"quiet", "initcall_debug"}

var (
	// ErrMissingLabName is returned when collection is enabled and the
	// lab name was left at its sentinel default.
	ErrMissingLabName = errors.New("lab name is required when collecting data (use -l)")

	// ErrMissingMachineName is returned when collection is enabled and
	// the machine name was left at its sentinel default.
	ErrMissingMachineName = errors.New("machine name is required when collecting data (use -m)")
)

// MissingFlagError reports a required boot flag absent from the running
// kernel's command line.
type MissingFlagError struct {
	Flag string
}

func (e *MissingFlagError) Error() string {
	return fmt.Sprintf("kernel was not booted with %q; add it to the kernel command line and reboot before collecting", e.Flag)
}

// Validator checks collection preconditions.
type Validator struct {
	// CmdlinePath is the kernel command line source. Defaults to
	// /proc/cmdline.
	CmdlinePath string
}

// New returns a Validator reading the running kernel's command line.
func New() *Validator {
	return &Validator{CmdlinePath: "/proc/cmdline"}
}

// Validate enforces the preconditions for the configured run: lab and
// machine names must have been set when collecting, and unless checks are
// skipped, every required boot flag must be present on the kernel command
// line.
func (v *Validator) Validate(opts *config.Options) error {
	if opts.Collect {
		if opts.Lab == config.DefaultName {
			return ErrMissingLabName
		}
		if opts.Machine == config.DefaultName {
			return ErrMissingMachineName
		}
	}

	if opts.SkipChecks {
		slog.Debug("kernel command line checks skipped")
		return nil
	}

	return v.checkCmdline()
}

func (v *Validator) checkCmdline() error {
	raw, err := os.ReadFile(v.CmdlinePath)
	if err != nil {
		return fmt.Errorf("failed to read kernel command line: %w", err)
	}

	// Parameters may carry values (token=value); matching is on the key.
	keys := make(map[string]bool)
	for _, tok := range strings.Fields(string(raw)) {
		key, _, _ := strings.Cut(tok, "=")
		keys[key] = true
	}

	for _, flag := range RequiredBootFlags {
		if !keys[flag] {
			slog.Debug("kernel command line check failed",
				"flag", flag,
				"cmdline", strings.TrimSpace(string(raw)),
			)
			return &MissingFlagError{Flag: flag}
		}
	}

	return nil
}
