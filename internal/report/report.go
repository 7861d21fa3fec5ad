// Package report turns a diff.Report into the text log shown to the user.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/keshon/avtally/internal/diff"

	"github.com/fatih/color"
)

const Separator = "==========================================================="

// Header describes the session a report belongs to.
type Header struct {
	Scanner   string // anti-malware product under test
	Directory string
	Files     int // files in the baseline snapshot
}

// RenderHeader renders the lines written when the baseline is taken.
func RenderHeader(h Header) string {
	var b strings.Builder
	writeHeader(&b, h)
	return b.String()
}

// RenderResult renders counts followed by one line per baseline file.
func RenderResult(r *diff.Report) string {
	var b strings.Builder
	writeResult(&b, r, plain)
	return b.String()
}

// Render is RenderHeader followed by RenderResult.
func Render(r *diff.Report, h Header) string {
	return RenderHeader(h) + RenderResult(r)
}

// Fprint writes the rendered report to w, colorizing verdict labels when colored is set.
func Fprint(w io.Writer, r *diff.Report, h Header, colored bool) error {
	var b strings.Builder
	writeHeader(&b, h)
	writeResult(&b, r, newPalette(colored).paint)
	_, err := io.WriteString(w, b.String())
	return err
}

// FprintResult is Fprint without the header.
func FprintResult(w io.Writer, r *diff.Report, colored bool) error {
	var b strings.Builder
	writeResult(&b, r, newPalette(colored).paint)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, h Header) {
	fmt.Fprintf(b, "Scanner: %s\n", h.Scanner)
	fmt.Fprintf(b, "Directory: %s\n", h.Directory)
	fmt.Fprintf(b, "Files: %d\n", h.Files)
	fmt.Fprintf(b, "%s\n\n", Separator)
}

func writeResult(b *strings.Builder, r *diff.Report, paint func(diff.Verdict) string) {
	fmt.Fprintf(b, "\nRemoved: %d\n", len(r.Removed))
	fmt.Fprintf(b, "Cleaned: %d\n", len(r.Changed))
	fmt.Fprintf(b, "Unchanged: %d\n", len(r.Unchanged))
	fmt.Fprintf(b, "Detected: %d/%d (%.1f%%)\n", r.Detected(), r.Total(), r.DetectionRate())
	fmt.Fprintf(b, "\n%s\n\n", Separator)

	// survivors first, then removed files, each in path order
	for _, e := range r.Entries() {
		if e.Verdict != diff.Removed {
			fmt.Fprintf(b, "%s -- %s\n", e.Path, paint(e.Verdict))
		}
	}
	for _, p := range r.Removed {
		fmt.Fprintf(b, "%s -- %s\n", p, paint(diff.Removed))
	}
}

func plain(v diff.Verdict) string { return v.String() }

type palette struct {
	removed, cleaned, unchanged *color.Color
}

func newPalette(colored bool) palette {
	p := palette{
		removed:   color.New(color.FgGreen),
		cleaned:   color.New(color.FgYellow),
		unchanged: color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.removed, p.cleaned, p.unchanged} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) paint(v diff.Verdict) string {
	switch v {
	case diff.Removed:
		return p.removed.Sprint(v.String())
	case diff.Changed:
		return p.cleaned.Sprint(v.String())
	default:
		return p.unchanged.Sprint(v.String())
	}
}
