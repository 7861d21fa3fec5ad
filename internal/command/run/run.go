package run

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/keshon/avtally/internal/cli"
	"github.com/keshon/avtally/internal/command"
	"github.com/keshon/avtally/internal/middleware"
	"github.com/keshon/avtally/internal/progress"
	"github.com/keshon/avtally/internal/report"
	"github.com/keshon/avtally/internal/session"
)

const prompt = "Has the scan finished? [y/N/q] "

type Command struct{}

func (c *Command) Name() string      { return "run" }
func (c *Command) Short() string     { return "r" }
func (c *Command) Aliases() []string { return []string{"session"} }
func (c *Command) Usage() string     { return "run [options] --scanner <name> <dir>" }
func (c *Command) Brief() string     { return "Interactive baseline, scan and compare session" }
func (c *Command) Help() string {
	return `Take a baseline of <dir>, then wait while the anti-malware product scans it.

Answer the prompt with:
  y   compare the directory against the baseline and print the results
  n   keep waiting (default)
  q   quit, writing the session log when --export is set

Every comparison is made against the baseline taken at the start, so answering
'y' again after a second scan pass shows the cumulative effect.

Options:
  -s, --scanner <name>   Anti-malware product under test (required).
  -e, --export <file>    Write the session log here on exit (.txt added when no extension).
      --config <file>    Configuration file (default avtally.yaml when present).
      --no-color         Disable colored output.

Usage:
  avtally run [options] --scanner <name> <dir>

Examples:
  avtally run --scanner Defender ./samples
  avtally run -s Defender -e defender-log ./samples
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Run(ctx *command.Context) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)

	configPath := fs.String("config", "", "")
	scanner := fs.String("scanner", "", "")
	fs.StringVar(scanner, "s", "", "alias for --scanner")
	export := fs.String("export", "", "")
	fs.StringVar(export, "e", "", "alias for --export")
	noColor := fs.Bool("no-color", false, "")

	if err := fs.Parse(ctx.Args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected one directory, got %d arguments", fs.NArg())
	}

	env, err := cli.Setup(ctx, *configPath, *noColor)
	if err != nil {
		return err
	}
	dir, err := cli.AbsDir(fs.Arg(0))
	if err != nil {
		return err
	}

	sc := env.Scanner(ctx)
	s, err := session.New(ctx.FS, sc, *scanner, dir, env.Log)
	if err != nil {
		return err
	}

	exportPath := cli.ExportPath(*export)
	if sc.Omit = cli.Inside(dir, exportPath); len(sc.Omit) > 0 {
		cli.Warn(ctx.Stderr, env.Color, "Log file %s is inside %s and is left out of the comparison.", exportPath, dir)
	}

	var hashed atomic.Int64
	sc.OnFile = func(string) { hashed.Add(1) }

	if err := waitBaseline(ctx, s, &hashed); err != nil {
		return err
	}
	sc.OnFile = nil

	fmt.Fprint(ctx.Stdout, report.RenderHeader(s.Header()))
	cli.Success(ctx.Stdout, env.Color, "Baseline ready. Start the %s scan now.", s.Product())

	if err := loop(ctx, s, env); err != nil {
		return err
	}

	if dest := exportPath; dest != "" {
		if err := s.Export(dest); err != nil {
			return err
		}
		cli.Success(ctx.Stdout, env.Color, "Log saved to %s", dest)
	}
	return nil
}

// waitBaseline starts the baseline scan and polls for its completion on the
// spinner's tick, so the console stays live while files are hashed.
func waitBaseline(ctx *command.Context, s *session.Session, hashed *atomic.Int64) error {
	done, err := s.StartBaseline(ctx.Ctx)
	if err != nil {
		return err
	}

	p := progress.NewProgressTo(ctx.Stderr, 0, "Fingerprinting")
	defer p.Finish()

	ticker := time.NewTicker(progress.Tick)
	defer ticker.Stop()

	for {
		select {
		case res := <-done:
			p.SetCurrent(int(hashed.Load()))
			if res.Err != nil {
				return fmt.Errorf("baseline scan: %w", res.Err)
			}
			return nil
		case <-ticker.C:
			p.SetCurrent(int(hashed.Load()))
		}
	}
}

// loop prompts until the user quits or stdin ends.
func loop(ctx *command.Context, s *session.Session, env *cli.Env) error {
	in := bufio.NewReader(ctx.Stdin)
	for {
		fmt.Fprint(ctx.Stdout, prompt)
		line, readErr := in.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read answer: %w", readErr)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			r, err := s.Continue(ctx.Ctx)
			switch {
			case errors.Is(err, context.Canceled):
				return err
			case err != nil:
				// the directory may reappear; let the user retry
				cli.Warn(ctx.Stdout, env.Color, "Comparison failed: %v", err)
			default:
				if err := report.FprintResult(ctx.Stdout, r, env.Color); err != nil {
					return err
				}
			}
		case "q", "quit":
			return nil
		}

		if readErr != nil {
			fmt.Fprintln(ctx.Stdout)
			return nil
		}
		if err := ctx.Ctx.Err(); err != nil {
			return err
		}
	}
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
			middleware.WithElapsed(),
		),
	)
}
