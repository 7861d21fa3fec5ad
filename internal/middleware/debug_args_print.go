package middleware

import (
	"fmt"

	"github.com/keshon/avtally/internal/command"
	"github.com/keshon/avtally/internal/config"
)

// WithDebugArgsPrint logs the arguments a command is invoked with.
// Dev builds also echo them to stderr.
func WithDebugArgsPrint() command.Middleware {
	return command.Around(func(ctx *command.Context, next command.Command) error {
		if config.IsDev && ctx.Stderr != nil {
			fmt.Fprintf(ctx.Stderr, "Args: %+v\n", ctx.Args)
		}
		if ctx.Log != nil {
			ctx.Log.Debug("command invoked", "cmd", next.Name(), "args", ctx.Args)
		}
		return next.Run(ctx)
	})
}
