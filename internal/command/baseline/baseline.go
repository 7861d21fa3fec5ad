package baseline

import (
	"flag"
	"fmt"

	"github.com/keshon/avtally/internal/cli"
	"github.com/keshon/avtally/internal/command"
	"github.com/keshon/avtally/internal/middleware"
	"github.com/keshon/avtally/internal/progress"
	"github.com/keshon/avtally/internal/session"
)

type Command struct{}

func (c *Command) Name() string      { return "baseline" }
func (c *Command) Short() string     { return "b" }
func (c *Command) Aliases() []string { return []string{"before"} }
func (c *Command) Usage() string     { return "baseline [options] --scanner <name> <dir>" }
func (c *Command) Brief() string     { return "Fingerprint a directory before the anti-malware scan" }
func (c *Command) Help() string {
	return `Fingerprint every file under <dir> and save the result as a baseline file.
Run this before the anti-malware product scans the directory, then run
'compare' once the scan has finished.

Options:
  -s, --scanner <name>   Anti-malware product under test (required).
  -o, --out <file>       Baseline file to write (default from config, .avtally-baseline.json).
      --config <file>    Configuration file (default avtally.yaml when present).
      --no-color         Disable colored output.

Usage:
  avtally baseline [options] --scanner <name> <dir>

Examples:
  avtally baseline --scanner Defender ./samples
  avtally baseline -s Defender -o before.json ./samples
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Run(ctx *command.Context) error {
	fs := flag.NewFlagSet("baseline", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)

	configPath := fs.String("config", "", "")
	scanner := fs.String("scanner", "", "")
	fs.StringVar(scanner, "s", "", "alias for --scanner")
	out := fs.String("out", "", "")
	fs.StringVar(out, "o", "", "alias for --out")
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

	dest := *out
	if dest == "" {
		dest = env.Config.BaselineFile
	}

	sc := env.Scanner(ctx)
	s, err := session.New(ctx.FS, sc, *scanner, dir, env.Log)
	if err != nil {
		return err
	}
	if sc.Omit = cli.Inside(dir, dest); len(sc.Omit) > 0 {
		cli.Warn(ctx.Stderr, env.Color, "Baseline file %s is inside %s and is left out of the comparison.", dest, dir)
	}

	p := progress.NewProgressTo(ctx.Stderr, 0, "Fingerprinting")
	sc.OnFile = func(string) { p.Increment() }

	done, err := s.StartBaseline(ctx.Ctx)
	if err != nil {
		p.Finish()
		return err
	}
	res := <-done
	p.Finish()
	if res.Err != nil {
		return fmt.Errorf("baseline scan: %w", res.Err)
	}

	if err := res.Snapshot.Save(ctx.FS, dest); err != nil {
		return err
	}
	env.Log.Info("baseline saved", "id", res.Snapshot.ID(), "created_at", res.Snapshot.CreatedAt(), "path", dest)

	cli.Success(ctx.Stdout, env.Color, "Baseline of %d files in %s saved to %s", res.Snapshot.Len(), dir, dest)
	if n := res.Snapshot.Skipped(); n > 0 {
		cli.Warn(ctx.Stdout, env.Color, "%d entries could not be read and were skipped", n)
	}
	cli.Success(ctx.Stdout, env.Color, "Start the %s scan now, then run 'avtally compare'.", s.Product())
	return nil
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
