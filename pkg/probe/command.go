package probe

import (
	"bytes"
	"context"
	"fmt"
	"os"
)

// Command is a Probe backed by one external command.
type Command struct {
	name   string
	runner Runner
	argv   []string
}

// NewCommand returns a Command probe named name running argv.
func NewCommand(name string, runner Runner, argv ...string) *Command {
	return &Command{name: name, runner: runner, argv: argv}
}

func (c *Command) Name() string { return c.name }

func (c *Command) Collect(ctx context.Context) ([]byte, bool) {
	return c.runner.Run(ctx, c.argv[0], c.argv[1:]...)
}

// FileDump is a Probe that concatenates the contents of host files. A
// file that cannot be read contributes its read error text instead, so
// the section always has content.
type FileDump struct {
	name  string
	paths []string
}

// NewFileDump returns a FileDump probe named name over paths.
func NewFileDump(name string, paths ...string) *FileDump {
	return &FileDump{name: name, paths: paths}
}

func (f *FileDump) Name() string { return f.name }

func (f *FileDump) Collect(ctx context.Context) ([]byte, bool) {
	if err := ctx.Err(); err != nil {
		return []byte(err.Error() + "\n"), false
	}

	var buf bytes.Buffer
	ok := false
	for _, path := range f.paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(&buf, "%v\n", err)
			continue
		}
		ok = true
		buf.Write(content)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), ok
}

// Func adapts a plain function into a Probe.
type Func struct {
	ProbeName string
	Fn        func(ctx context.Context) ([]byte, bool)
}

// NewFunc returns a Probe named name backed by fn.
func NewFunc(name string, fn func(ctx context.Context) ([]byte, bool)) *Func {
	return &Func{ProbeName: name, Fn: fn}
}

func (f *Func) Name() string { return f.ProbeName }

func (f *Func) Collect(ctx context.Context) ([]byte, bool) {
	return f.Fn(ctx)
}
