// Package report assembles the boot data report file.
//
// A report is an ordered sequence of labeled sections appended once per
// run. The file name encodes lab, machine and the capture timestamp, so
// repeated runs on the same machine never collide in practice. The file
// is created once, never mutated after the run completes and never
// deleted by this tool.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout encodes the capture time in the report file name:
// two-digit year, month, day, then hour, minute, second.
const TimestampLayout = "060102-150405"

// FileName builds the report file name for a run.
func FileName(lab, machine string, ts time.Time) string {
	return fmt.Sprintf("boot-data-%s-%s-%s.txt", lab, machine, ts.Format(TimestampLayout))
}

// Report is the single output file of a collection run.
type Report struct {
	// Path is the report file location.
	Path string

	// RunID uniquely identifies this collection run.
	RunID string
}

// Create opens a new report file under dir and writes the banner line
// identifying the run: tool version, run id and the original invocation
// arguments.
func Create(dir, lab, machine, toolVersion string, args []string, now time.Time) (*Report, error) {
	r := &Report{
		Path:  filepath.Join(dir, FileName(lab, machine, now)),
		RunID: uuid.New().String(),
	}

	banner := fmt.Sprintf("# bootdata %s run %s: %s\n\n",
		toolVersion, r.RunID, strings.Join(args, " "))
	if err := r.append([]byte(banner)); err != nil {
		return nil, err
	}

	return r, nil
}

// AddSection appends one delimited section. The body is attached
// verbatim; a missing trailing newline is added so the blank separator
// line stays on its own.
func (r *Report) AddSection(name string, body []byte) error {
	var buf strings.Builder
	fmt.Fprintf(&buf, "== %s ==\n", name)
	buf.Write(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return r.append([]byte(buf.String()))
}

func (r *Report) append(b []byte) error {
	f, err := os.OpenFile(r.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open report %s: %w", r.Path, err)
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report %s: %w", r.Path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report %s: %w", r.Path, err)
	}
	return nil
}
