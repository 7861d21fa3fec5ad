package command

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/logging"
)

var ErrNoCommand = errors.New("no command provided")

// NewContext returns a context bound to the process streams and the real filesystem.
func NewContext(ctx context.Context) *Context {
	return &Context{
		Ctx:    ctx,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		FS:     fs.NewOSFS(),
		Log:    logging.NewText(os.Stderr, slog.LevelWarn),
	}
}

// Execute resolves args against the registered commands and runs the match
// with the remaining args.
func Execute(ctx *Context, args []string) error {
	if len(args) == 0 {
		return ErrNoCommand
	}

	node, remaining, err := ResolveCommand(args)
	if err != nil {
		return err
	}

	if ctx.Ctx == nil {
		ctx.Ctx = context.Background()
	}
	if ctx.Log == nil {
		ctx.Log = logging.Nop()
	}
	ctx.Args = remaining
	return node.Cmd.Run(ctx)
}
