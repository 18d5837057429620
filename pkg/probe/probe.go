// Package probe defines the diagnostic probe abstraction used to gather
// report sections.
//
// A probe is a named capability returning captured output and a success
// indicator. Callers attach the output to the report either way: on a
// minimal or embedded system a missing utility's error text is itself
// useful diagnostic content, so a failing probe never aborts a run.
package probe

import (
	"context"
	"os/exec"
)

// Probe is a single named diagnostic capability.
type Probe interface {
	Name() string
	Collect(ctx context.Context) (output []byte, ok bool)
}

// Runner executes external commands and captures their combined stdout
// and stderr. It exists so tests can simulate command behavior.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output []byte, ok bool)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

// Run executes the command and returns its combined output. A command
// that cannot be started at all has no output of its own; the error text
// stands in for it so the section is never empty.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, bool) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if len(out) == 0 {
			out = []byte(err.Error() + "\n")
		}
		return out, false
	}
	return out, true
}
