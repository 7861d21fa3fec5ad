// Package diff classifies baseline files against a later snapshot.
package diff

import (
	"sort"

	"github.com/keshon/avtally/internal/snapshot"
)

// Verdict is the fate of one baseline file.
type Verdict int

const (
	Unchanged Verdict = iota // present with identical content: not detected
	Changed                  // present with different content: cleaned in place
	Removed                  // gone: detected and deleted
)

func (v Verdict) String() string {
	switch v {
	case Removed:
		return "removed"
	case Changed:
		return "cleaned"
	case Unchanged:
		return "unchanged"
	}
	return "unknown"
}

// Entry is the verdict for one path.
type Entry struct {
	Path    string
	Verdict Verdict
}

// Report is the read-only result of Diff. Every baseline path is in exactly
// one of Removed, Changed or Unchanged; each list is sorted.
type Report struct {
	Removed   []string
	Changed   []string
	Unchanged []string

	verdicts map[string]Verdict
}

// Diff classifies every path of baseline against current. Paths that only
// exist in current are ignored. Nil snapshots count as empty.
func Diff(baseline, current *snapshot.Snapshot) *Report {
	r := &Report{
		Removed:   []string{},
		Changed:   []string{},
		Unchanged: []string{},
		verdicts:  make(map[string]Verdict, baseline.Len()),
	}

	for _, p := range baseline.Paths() {
		before, _ := baseline.Digest(p)
		after, ok := current.Digest(p)

		var v Verdict
		switch {
		case !ok:
			v = Removed
			r.Removed = append(r.Removed, p)
		case after != before:
			v = Changed
			r.Changed = append(r.Changed, p)
		default:
			v = Unchanged
			r.Unchanged = append(r.Unchanged, p)
		}
		r.verdicts[p] = v
	}

	return r
}

// Verdict returns the classification of path; ok is false for paths not in the baseline.
func (r *Report) Verdict(path string) (Verdict, bool) {
	v, ok := r.verdicts[path]
	return v, ok
}

// Total is the number of baseline files.
func (r *Report) Total() int {
	return len(r.Removed) + len(r.Changed) + len(r.Unchanged)
}

// Detected counts files the scanner acted on: removed or cleaned.
func (r *Report) Detected() int {
	return len(r.Removed) + len(r.Changed)
}

// DetectionRate is Detected/Total in percent, 0 for an empty baseline.
func (r *Report) DetectionRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.Detected()) * 100 / float64(r.Total())
}

// Entries lists every baseline file with its verdict in path order.
func (r *Report) Entries() []Entry {
	out := make([]Entry, 0, len(r.verdicts))
	for p, v := range r.verdicts {
		out = append(out, Entry{Path: p, Verdict: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
