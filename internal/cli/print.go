package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Success prints a status line, green when colored is set.
func Success(w io.Writer, colored bool, format string, args ...any) {
	printStatus(w, color.FgGreen, colored, format, args...)
}

// Warn prints a status line, yellow when colored is set.
func Warn(w io.Writer, colored bool, format string, args ...any) {
	printStatus(w, color.FgYellow, colored, format, args...)
}

func printStatus(w io.Writer, attr color.Attribute, colored bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if colored {
		c := color.New(attr)
		c.EnableColor()
		msg = c.Sprint(msg)
	}
	fmt.Fprintln(w, msg)
}
