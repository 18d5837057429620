package version

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/bootlab/bootdata/pkg/version.Version=1.0.0"
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
