package compare

import (
	"flag"
	"fmt"

	"github.com/keshon/avtally/internal/cli"
	"github.com/keshon/avtally/internal/command"
	"github.com/keshon/avtally/internal/middleware"
	"github.com/keshon/avtally/internal/progress"
	"github.com/keshon/avtally/internal/report"
	"github.com/keshon/avtally/internal/session"
	"github.com/keshon/avtally/internal/snapshot"
)

type Command struct{}

func (c *Command) Name() string      { return "compare" }
func (c *Command) Short() string     { return "c" }
func (c *Command) Aliases() []string { return []string{"after", "diff"} }
func (c *Command) Usage() string     { return "compare [options] [dir]" }
func (c *Command) Brief() string     { return "Compare a directory against its baseline after the scan" }
func (c *Command) Help() string {
	return `Fingerprint the directory again and classify every baseline file:

  removed     the file is gone (detected and deleted or quarantined)
  cleaned     the file is still there with different content (disinfected)
  unchanged   the file is untouched (not detected)

Files that appeared after the baseline are ignored. The directory defaults to
the one recorded in the baseline file.

Options:
  -b, --baseline <file>  Baseline file to compare against (default from config).
  -e, --export <file>    Also write the report to a text file (.txt added when no extension).
  -s, --scanner <name>   Override the product name stored in the baseline.
      --config <file>    Configuration file (default avtally.yaml when present).
      --no-color         Disable colored output.

Usage:
  avtally compare [options] [dir]

Examples:
  avtally compare
  avtally compare -b before.json -e results ./samples
`
}

func (c *Command) Subcommands() []command.Command { return nil }

func (c *Command) Run(ctx *command.Context) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)

	configPath := fs.String("config", "", "")
	baselinePath := fs.String("baseline", "", "")
	fs.StringVar(baselinePath, "b", "", "alias for --baseline")
	export := fs.String("export", "", "")
	fs.StringVar(export, "e", "", "alias for --export")
	scanner := fs.String("scanner", "", "")
	fs.StringVar(scanner, "s", "", "alias for --scanner")
	noColor := fs.Bool("no-color", false, "")

	if err := fs.Parse(ctx.Args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one directory, got %d arguments", fs.NArg())
	}

	env, err := cli.Setup(ctx, *configPath, *noColor)
	if err != nil {
		return err
	}

	path := *baselinePath
	if path == "" {
		path = env.Config.BaselineFile
	}
	base, err := snapshot.Load(ctx.FS, path)
	if err != nil {
		if ctx.FS.IsNotExist(err) {
			return fmt.Errorf("no baseline at %s, run 'avtally baseline' first: %w", path, session.ErrNoBaseline)
		}
		return err
	}

	dir := fs.Arg(0)
	if dir == "" {
		dir = base.Root()
	}
	if dir, err = cli.AbsDir(dir); err != nil {
		return err
	}
	env.Log.Debug("baseline loaded", "id", base.ID(), "created_at", base.CreatedAt(), "files", base.Len())
	name := *scanner
	if name == "" {
		name = base.Product()
	}

	sc := env.Scanner(ctx)
	s, err := session.New(ctx.FS, sc, name, dir, env.Log)
	if err != nil {
		return err
	}
	if err := s.SetBaseline(base); err != nil {
		return err
	}
	exportPath := cli.ExportPath(*export)
	sc.Omit = cli.Inside(dir, path, exportPath)

	p := progress.NewProgressTo(ctx.Stderr, base.Len(), "Comparing")
	sc.OnFile = func(string) { p.Increment() }
	r, err := s.Continue(ctx.Ctx)
	p.Finish()
	if err != nil {
		return err
	}

	if err := report.Fprint(ctx.Stdout, r, s.Header(), env.Color); err != nil {
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

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
			middleware.WithElapsed(),
		),
	)
}
