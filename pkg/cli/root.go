package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bootlab/bootdata/pkg/collector"
	"github.com/bootlab/bootdata/pkg/config"
	"github.com/bootlab/bootdata/pkg/logging"
	"github.com/bootlab/bootdata/pkg/preflight"
	"github.com/bootlab/bootdata/pkg/report"
	"github.com/bootlab/bootdata/pkg/upload"
	"github.com/bootlab/bootdata/pkg/version"
)

// New builds the bootdata command tree.
func New() *cli.Command {
	return &cli.Command{
		Name:    "bootdata",
		Usage:   "Collect boot diagnostic data and upload it to the lab collection service",
		Version: version.Version,
		Description: `Collects machine and boot diagnostic information (kernel log, CPU info,
memory, mounts, kernel configuration, process list) into a single
timestamped report file, and uploads that file to the collection service.

The kernel must have been booted with the "quiet" and "initcall_debug"
command line flags, otherwise the captured kernel log lacks the boot
timing traces the report exists for; this is verified before any data is
collected (skip with -x).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lab",
				Aliases: []string{"l"},
				Usage:   "lab name, included in the report file name (hyphens become underscores)",
			},
			&cli.StringFlag{
				Name:    "machine",
				Aliases: []string{"m"},
				Usage:   "machine name, included in the report file name",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   ".",
				Usage:   "directory the report file is written to",
			},
			&cli.BoolFlag{
				Name:    "skip-upload",
				Aliases: []string{"s"},
				Usage:   "collect only, do not upload the report",
			},
			&cli.BoolFlag{
				Name:    "skip-checks",
				Aliases: []string{"x"},
				Usage:   "skip the kernel command line preflight checks",
			},
			&cli.StringFlag{
				Name:    "upload-file",
				Aliases: []string{"u"},
				Usage:   "upload `FILE` as-is instead of collecting (implies -x)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "output logs in JSON format",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
		},
		Action: runCollect,
	}
}

// Run executes the command tree with the given raw arguments.
func Run(ctx context.Context, args []string) error {
	return New().Run(ctx, args)
}

func runCollect(ctx context.Context, cmd *cli.Command) error {
	logging.Setup(cmd.Bool("debug"), cmd.Bool("log-json"))

	opts := optionsFromFlags(cmd)

	if err := preflight.New().Validate(opts); err != nil {
		return err
	}

	uploader := upload.New()

	if !opts.Collect {
		return uploadFile(uploader, opts.UploadFile)
	}

	rep, err := report.Create(opts.OutputDir, opts.Lab, opts.Machine,
		version.Version, os.Args[1:], time.Now())
	if err != nil {
		return err
	}

	factory := collector.NewDefaultFactory(opts, version.Version, os.Args[1:])
	col := &collector.Collector{Probes: factory.Probes(ctx)}
	if err := col.Collect(ctx, rep); err != nil {
		return err
	}

	fmt.Printf("boot data written to %s\n", rep.Path)

	if !opts.Upload {
		return nil
	}
	return uploadFile(uploader, rep.Path)
}

func uploadFile(u *upload.Uploader, path string) error {
	if err := u.Upload(path); err != nil {
		return err
	}
	fmt.Printf("%s uploaded successfully\n", filepath.Base(path))
	return nil
}

// optionsFromFlags translates parsed flags into the run configuration.
func optionsFromFlags(cmd *cli.Command) *config.Options {
	opts := config.NewOptions()

	if cmd.IsSet("lab") {
		opts.Lab = config.NormalizeLab(cmd.String("lab"))
	}
	if cmd.IsSet("machine") {
		opts.Machine = cmd.String("machine")
	}
	opts.OutputDir = cmd.String("dir")
	opts.Debug = cmd.Bool("debug")

	if cmd.Bool("skip-upload") {
		opts.Upload = false
	}
	if cmd.Bool("skip-checks") {
		opts.SkipChecks = true
	}

	// An externally supplied file is uploaded as-is: no collection, no
	// command line checks.
	if f := cmd.String("upload-file"); f != "" {
		opts.UploadFile = f
		opts.Collect = false
		opts.SkipChecks = true
	}

	return opts
}
