package diff_test

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/keshon/avtally/internal/diff"
	"github.com/keshon/avtally/internal/digest"
	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/snapshot"
)

const root = "/samples"

func p(name string) string { return filepath.Join(root, name) }

func newTestFS(t *testing.T, files map[string]string) *fs.MemoryFS {
	t.Helper()
	m := fs.NewMemoryFS()
	m.MkdirAll(root, 0o755)
	for name, content := range files {
		if err := m.WriteFile(p(name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func scan(t *testing.T, fsys fs.FS) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.NewScanner(fsys, digest.MD5).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func counts(r *diff.Report) [3]int {
	return [3]int{len(r.Removed), len(r.Changed), len(r.Unchanged)}
}

func TestScenarioNoChanges(t *testing.T) {
	m := newTestFS(t, map[string]string{"a": "hello", "b": "world"})
	baseline := scan(t, m)
	current := scan(t, m)

	r := diff.Diff(baseline, current)
	if counts(r) != [3]int{0, 0, 2} {
		t.Fatalf("unexpected counts %v", counts(r))
	}
	if !reflect.DeepEqual(r.Unchanged, []string{p("a"), p("b")}) {
		t.Fatalf("unexpected unchanged list %v", r.Unchanged)
	}
}

func TestScenarioFileRemoved(t *testing.T) {
	m := newTestFS(t, map[string]string{"a": "hello", "b": "world"})
	baseline := scan(t, m)
	m.Remove(p("a"))
	current := scan(t, m)

	r := diff.Diff(baseline, current)
	if counts(r) != [3]int{1, 0, 1} {
		t.Fatalf("unexpected counts %v", counts(r))
	}
	if r.Removed[0] != p("a") || r.Unchanged[0] != p("b") {
		t.Fatalf("unexpected classification %+v", r)
	}
}

func TestScenarioFileCleaned(t *testing.T) {
	m := newTestFS(t, map[string]string{"a": "hello"})
	baseline := scan(t, m)
	m.WriteFile(p("a"), []byte("cleaned"), 0o644)
	current := scan(t, m)

	r := diff.Diff(baseline, current)
	if counts(r) != [3]int{0, 1, 0} {
		t.Fatalf("unexpected counts %v", counts(r))
	}
	if v, ok := r.Verdict(p("a")); !ok || v != diff.Changed {
		t.Fatalf("expected a to be cleaned, got %v", v)
	}
}

func TestScenarioEmptyBaseline(t *testing.T) {
	m := newTestFS(t, nil)
	baseline := scan(t, m)
	if baseline.Len() != 0 {
		t.Fatal("expected empty baseline")
	}

	m.WriteFile(p("dropped"), []byte("new"), 0o644)
	r := diff.Diff(baseline, scan(t, m))
	if counts(r) != [3]int{0, 0, 0} || r.Total() != 0 {
		t.Fatalf("expected all-zero counts, got %v", counts(r))
	}
	if r.DetectionRate() != 0 {
		t.Fatalf("expected 0 rate, got %v", r.DetectionRate())
	}
}

func TestScenarioUnreadableAtBaseline(t *testing.T) {
	m := newTestFS(t, map[string]string{"locked": "x", "b": "y"})
	m.Deny(p("locked"))
	baseline := scan(t, m)

	m.Allow(p("locked"))
	current := scan(t, m)

	r := diff.Diff(baseline, current)
	if _, ok := r.Verdict(p("locked")); ok {
		t.Fatal("file unreadable at baseline must not be classified")
	}
	if counts(r) != [3]int{0, 0, 1} {
		t.Fatalf("unexpected counts %v", counts(r))
	}
}

func TestNewFilesIgnored(t *testing.T) {
	baseline := snapshot.New(root, digest.MD5, map[string]string{"/a": "1"})
	current := snapshot.New(root, digest.MD5, map[string]string{"/a": "1", "/new": "2"})

	r := diff.Diff(baseline, current)
	if _, ok := r.Verdict("/new"); ok {
		t.Fatal("file only in current must not be classified")
	}
	for _, e := range r.Entries() {
		if e.Path == "/new" {
			t.Fatal("file only in current must not be listed")
		}
	}
}

func TestNilSnapshots(t *testing.T) {
	r := diff.Diff(nil, nil)
	if r.Total() != 0 {
		t.Fatal("expected empty report")
	}
	b := snapshot.New(root, digest.MD5, map[string]string{"/a": "1"})
	r = diff.Diff(b, nil)
	if counts(r) != [3]int{1, 0, 0} {
		t.Fatalf("nil current should mark everything removed, got %v", counts(r))
	}
}

func TestDetection(t *testing.T) {
	b := snapshot.New(root, digest.MD5, map[string]string{"/a": "1", "/b": "2", "/c": "3", "/d": "4"})
	c := snapshot.New(root, digest.MD5, map[string]string{"/b": "x", "/c": "3", "/d": "4"})

	r := diff.Diff(b, c)
	if r.Detected() != 2 || r.Total() != 4 || r.DetectionRate() != 50 {
		t.Fatalf("unexpected detection: %d/%d %.1f", r.Detected(), r.Total(), r.DetectionRate())
	}
}

func TestVerdictString(t *testing.T) {
	tests := map[diff.Verdict]string{
		diff.Removed:     "removed",
		diff.Changed:     "cleaned",
		diff.Unchanged:   "unchanged",
		diff.Verdict(42): "unknown",
	}
	for v, want := range tests {
		if v.String() != want {
			t.Errorf("%d: got %q, want %q", v, v.String(), want)
		}
	}
}

func randomSnapshot(rng *rand.Rand, n int) map[string]string {
	m := make(map[string]string, n)
	for i := 0; i < n; i++ {
		m[fmt.Sprintf("/f%d", rng.Intn(n*2))] = fmt.Sprintf("d%d", rng.Intn(3))
	}
	return m
}

func TestPartitionProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		bm := randomSnapshot(rng, rng.Intn(40))
		cm := randomSnapshot(rng, rng.Intn(40))
		b := snapshot.New(root, digest.MD5, bm)
		c := snapshot.New(root, digest.MD5, cm)

		r := diff.Diff(b, c)

		seen := map[string]int{}
		for _, list := range [][]string{r.Removed, r.Changed, r.Unchanged} {
			for _, p := range list {
				seen[p]++
			}
		}
		if len(seen) != len(bm) || r.Total() != len(bm) {
			t.Fatalf("union %d != baseline %d", len(seen), len(bm))
		}
		for p, n := range seen {
			if n != 1 {
				t.Fatalf("%q classified %d times", p, n)
			}
			if _, ok := bm[p]; !ok {
				t.Fatalf("%q not in baseline", p)
			}
		}
		for _, p := range r.Removed {
			if _, ok := cm[p]; ok {
				t.Fatalf("%q removed but present in current", p)
			}
		}
		for _, p := range r.Changed {
			if bm[p] == cm[p] {
				t.Fatalf("%q changed with equal digests", p)
			}
		}
		for _, p := range r.Unchanged {
			if bm[p] != cm[p] {
				t.Fatalf("%q unchanged with different digests", p)
			}
		}

		if again := diff.Diff(b, c); !reflect.DeepEqual(again, r) {
			t.Fatal("Diff is not deterministic")
		}

		self := diff.Diff(b, b)
		if len(self.Removed) != 0 || len(self.Changed) != 0 || len(self.Unchanged) != b.Len() {
			t.Fatalf("Diff(S, S) should be all unchanged, got %v", counts(self))
		}
	}
}
