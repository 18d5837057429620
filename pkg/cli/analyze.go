package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bootlab/bootdata/pkg/analyze"
	"github.com/bootlab/bootdata/pkg/logging"
	"github.com/bootlab/bootdata/pkg/serializer"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze a dmesg captured with the initcall_debug boot flag",
		Description: `Extracts initcall and driver probe timing from a kernel log captured
with initcall_debug: durations, deferred probes, failures, total boot
time and the moment the init process started.

Reads from stdin unless --dmesg is given:

  dmesg | bootdata analyze
  bootdata analyze --dmesg dmesg.txt --format json -o analysis.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dmesg",
				Usage: "dmesg `FILE` to analyze (default: stdin)",
			},
			&cli.BoolFlag{
				Name:  "before-init",
				Usage: "only account for initcalls and probes before the init process starts",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   serializer.StdoutPath,
				Usage:   "output file path (default: stdout)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Value:   string(serializer.FormatText),
				Usage:   "output format (text, json, yaml)",
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
		Action: runAnalyze,
	}
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	logging.Setup(cmd.Bool("debug"), cmd.Bool("log-json"))

	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return fmt.Errorf("unknown output format: %q, valid formats are: text, json, yaml", outFormat)
	}

	var in io.Reader = os.Stdin
	if path := cmd.String("dmesg"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open dmesg file: %w", err)
		}
		defer f.Close()
		in = f
	}

	a, err := analyze.Parse(in, cmd.Bool("before-init"))
	if err != nil {
		return err
	}

	return serializer.NewFileWriterOrStdout(outFormat, cmd.String("output")).Serialize(a.Report())
}
