package serializer

import (
	"fmt"
	"log/slog"
	"os"
)

// FileWriter serializes to a file path, or to stdout when the path is
// empty or StdoutPath.
type FileWriter struct {
	format Format
	path   string
}

// NewFileWriterOrStdout returns a FileWriter for path; "" and "-" select
// standard output.
func NewFileWriterOrStdout(format Format, path string) *FileWriter {
	return &FileWriter{format: format, path: path}
}

// Serialize writes v to the configured destination.
func (f *FileWriter) Serialize(v any) error {
	if f.path == "" || f.path == StdoutPath {
		return NewStdoutWriter(f.format).Serialize(v)
	}

	out, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			slog.Warn("failed to close output file", "path", f.path, "error", cerr)
		}
	}()

	return NewWriter(f.format, out).Serialize(v)
}
