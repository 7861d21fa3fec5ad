package help

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/keshon/avtally/internal/command"
)

func runHelp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := (&Command{}).Run(&command.Context{Args: args, Stdout: &out})
	return out.String(), err
}

func TestListAllCommands(t *testing.T) {
	out, err := runHelp(t)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Available commands:") || !strings.Contains(out, "Show help for commands") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}

func TestCommandHelp(t *testing.T) {
	out, err := runHelp(t, "HELP")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "help [command]") || !strings.Contains(out, "Aliases: ?") {
		t.Fatalf("unexpected help:\n%s", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runHelp(t, "bogus"); !errors.Is(err, command.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}
