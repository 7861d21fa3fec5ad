package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/avtally/internal/command"
	_ "github.com/keshon/avtally/internal/command/baseline"
	_ "github.com/keshon/avtally/internal/command/compare"
	_ "github.com/keshon/avtally/internal/command/help"
	_ "github.com/keshon/avtally/internal/command/run"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"help"}
	}

	if err := command.Execute(command.NewContext(ctx), args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
