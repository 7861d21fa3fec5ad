package middleware

import (
	"time"

	"github.com/keshon/avtally/internal/command"
)

// WithElapsed logs how long the command took, and whether it failed.
func WithElapsed() command.Middleware {
	return command.Around(func(ctx *command.Context, next command.Command) error {
		start := time.Now()
		err := next.Run(ctx)
		if ctx.Log == nil {
			return err
		}

		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			ctx.Log.Debug("command failed", "cmd", next.Name(), "elapsed", elapsed, "err", err)
		} else {
			ctx.Log.Info("command finished", "cmd", next.Name(), "elapsed", elapsed)
		}
		return err
	})
}
