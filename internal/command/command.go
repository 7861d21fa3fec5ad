package command

import (
	"context"
	"io"

	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/logging"
)

// Command represents a cli command
type Command interface {
	Name() string
	Short() string
	Aliases() []string
	Usage() string
	Brief() string
	Help() string
	Subcommands() []Command
	Run(ctx *Context) error
}

// Context represents a cli context
type Context struct {
	Ctx    context.Context
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	FS     fs.FS
	Log    logging.Logger
}
