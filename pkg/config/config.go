// Package config holds the run configuration threaded through every
// component of the collector.
package config

import "strings"

// DefaultName is the sentinel value for lab and machine names that were
// never set on the command line.
const DefaultName = "unknown"

// Options carries the configuration of a single run.
type Options struct {
	// Lab is the lab name, normalized for safe inclusion in a file name.
	Lab string

	// Machine is the machine name within the lab.
	Machine string

	// OutputDir is the directory the report file is written to.
	OutputDir string

	// Collect enables data collection. Disabled when an external file is
	// supplied for upload.
	Collect bool

	// Upload enables the upload step after collection.
	Upload bool

	// SkipChecks disables the kernel command line preflight checks.
	SkipChecks bool

	// UploadFile is an externally supplied report to upload as-is.
	UploadFile string

	// Debug enables verbose execution tracing.
	Debug bool
}

// NewOptions returns Options with the documented defaults: collect and
// upload enabled, names at the sentinel, output to the current directory.
func NewOptions() *Options {
	return &Options{
		Lab:       DefaultName,
		Machine:   DefaultName,
		OutputDir: ".",
		Collect:   true,
		Upload:    true,
	}
}

// NormalizeLab makes a lab name safe for inclusion in the report file
// name: lowercased, hyphens mapped to underscores.
func NormalizeLab(lab string) string {
	return strings.ToLower(strings.ReplaceAll(lab, "-", "_"))
}
