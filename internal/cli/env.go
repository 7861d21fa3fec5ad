// Package cli holds what the avtally commands share: configuration and
// logger setup, scanner construction and console messages.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/keshon/avtally/internal/command"
	"github.com/keshon/avtally/internal/config"
	"github.com/keshon/avtally/internal/logging"
	"github.com/keshon/avtally/internal/snapshot"

	"github.com/fatih/color"
)

// Env is the per-invocation state built from the config file and flags.
type Env struct {
	Config *config.Config
	Log    logging.Logger
	Color  bool
}

// Setup loads the configuration and replaces ctx.Log with the configured logger.
func Setup(ctx *command.Context, configPath string, noColor bool) (*Env, error) {
	cfg, err := config.Load(ctx.FS, configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(ctx.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	ctx.Log = log

	return &Env{
		Config: cfg,
		Log:    log,
		Color:  UseColor(cfg.Color, noColor),
	}, nil
}

// UseColor resolves the color mode. Auto follows fatih/color's terminal
// detection, which also honours NO_COLOR.
func UseColor(mode string, noColor bool) bool {
	if noColor {
		return false
	}
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return !color.NoColor
	}
}

// Scanner builds a snapshot scanner from the configuration.
func (e *Env) Scanner(ctx *command.Context) *snapshot.Scanner {
	sc := snapshot.NewScanner(ctx.FS, e.Config.Hash)
	sc.Workers = e.Config.Workers
	sc.Exclude = e.Config.Exclude
	sc.Logger = e.Log
	return sc
}

// AbsDir makes dir absolute so that paths in reports and baseline files do
// not depend on the working directory.
func AbsDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	return abs, nil
}

// ExportPath appends the default log extension when dest has none.
func ExportPath(dest string) string {
	if dest == "" || filepath.Ext(dest) != "" {
		return dest
	}
	return dest + config.ExportExt
}

// Inside returns the absolute form of every path that lies under dir.
// The commands leave these out of their snapshots because avtally itself
// writes them.
func Inside(dir string, paths ...string) []string {
	var out []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, abs)
	}
	return out
}
