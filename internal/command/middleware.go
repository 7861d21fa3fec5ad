package command

// Middleware decorates a command. The result keeps the inner command's name and help.
type Middleware func(Command) Command

// WrappedCommand runs Wrap around the inner command instead of calling it directly.
type WrappedCommand struct {
	Command
	Wrap func(ctx *Context, next Command) error
}

func (w *WrappedCommand) Run(ctx *Context) error {
	if w.Wrap == nil {
		return w.Command.Run(ctx)
	}
	return w.Wrap(ctx, w.Command)
}

// Around turns fn into a Middleware; fn decides when and whether next runs.
func Around(fn func(ctx *Context, next Command) error) Middleware {
	return func(cmd Command) Command {
		return &WrappedCommand{Command: cmd, Wrap: fn}
	}
}

// ApplyMiddlewares wraps cmd in order, so the last middleware runs outermost.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
