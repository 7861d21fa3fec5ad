package command_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keshon/avtally/internal/command"
	_ "github.com/keshon/avtally/internal/command/baseline"
	_ "github.com/keshon/avtally/internal/command/compare"
	_ "github.com/keshon/avtally/internal/command/help"
	_ "github.com/keshon/avtally/internal/command/run"
	"github.com/keshon/avtally/internal/config"
	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/snapshot"
)

// Helper to create a temporary directory and switch into it
func tmpWorkDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	oldDir, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to temp dir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldDir) })

	return dir
}

func writeSamples(t *testing.T, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join("samples", filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// Run a command line against the real filesystem
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	ctx := &command.Context{
		Ctx:    context.Background(),
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &bytes.Buffer{},
		FS:     fs.NewOSFS(),
	}
	err := command.Execute(ctx, args)
	return out.String(), err
}

// --- Tests ---

func TestCLI_BaselineThenCompare(t *testing.T) {
	dir := tmpWorkDir(t)
	writeSamples(t, map[string]string{
		"a.exe":       "eicar",
		"b.doc":       "macro",
		"nested/c.js": "miner",
	})

	if _, err := execute(t, "", "baseline", "--scanner", "Defender", "samples"); err != nil {
		t.Fatalf("baseline failed: %v", err)
	}

	snap, err := snapshot.Load(fs.NewOSFS(), config.DefaultBaselineFile)
	if err != nil {
		t.Fatalf("expected default baseline file: %v", err)
	}
	root, _ := filepath.EvalSymlinks(filepath.Join(dir, "samples"))
	if got, _ := filepath.EvalSymlinks(snap.Root()); got != root {
		t.Fatalf("baseline root %q, want %q", snap.Root(), root)
	}

	os.Remove(filepath.Join("samples", "a.exe"))
	os.WriteFile(filepath.Join("samples", "b.doc"), []byte("clean"), 0o644)

	out, err := execute(t, "", "compare", "--no-color", "--export", "result")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !strings.Contains(out, "Removed: 1\nCleaned: 1\nUnchanged: 1\n") {
		t.Fatalf("unexpected counts:\n%s", out)
	}
	if !strings.Contains(out, filepath.Join("nested", "c.js")+" -- unchanged") {
		t.Fatalf("missing per-file line:\n%s", out)
	}
	if _, err := os.Stat("result.txt"); err != nil {
		t.Fatalf("export missing: %v", err)
	}
}

func TestCLI_ConfigFilePickedUp(t *testing.T) {
	tmpWorkDir(t)
	writeSamples(t, map[string]string{"keep.bin": "x", "skip.tmp": "y"})

	cfg := "hash: sha256\nexclude: [\"*.tmp\"]\nbaseline_file: state/base.json\ncolor: never\n"
	if err := os.WriteFile(config.DefaultConfigFile, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "baseline", "-s", "Defender", "samples"); err != nil {
		t.Fatalf("baseline failed: %v", err)
	}
	snap, err := snapshot.Load(fs.NewOSFS(), filepath.Join("state", "base.json"))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Algorithm() != "sha256" || snap.Len() != 1 {
		t.Fatalf("config not applied: algorithm %q, %d files", snap.Algorithm(), snap.Len())
	}
}

func TestCLI_InteractiveRun(t *testing.T) {
	tmpWorkDir(t)
	writeSamples(t, map[string]string{"a.exe": "eicar"})

	out, err := execute(t, "y\nq\n", "run", "-s", "Defender", "--no-color", "samples")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "Removed: 0\nCleaned: 0\nUnchanged: 1\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	if _, err := execute(t, "", "scan-everything"); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestCLI_Help(t *testing.T) {
	out, err := execute(t, "", "help")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"baseline", "compare", "help", "run"} {
		if !strings.Contains(out, name) {
			t.Errorf("help listing misses %q", name)
		}
	}
}

func TestCLI_RebaselineInsideSampleDir(t *testing.T) {
	dir := tmpWorkDir(t)
	if err := os.WriteFile(filepath.Join(dir, "sample.exe"), []byte("eicar"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if _, err := execute(t, "", "baseline", "-s", "X", "--no-color", "."); err != nil {
			t.Fatalf("baseline %d failed: %v", i+1, err)
		}
	}

	out, err := execute(t, "", "compare", "--no-color", "--export", "result")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !strings.Contains(out, "Files: 1\n") || !strings.Contains(out, "Removed: 0\nCleaned: 0\nUnchanged: 1\n") {
		t.Fatalf("the baseline file must not count as a sample:\n%s", out)
	}
	if strings.Contains(out, config.DefaultBaselineFile) {
		t.Fatalf("baseline file listed in the report:\n%s", out)
	}

	// a second comparison sees the exported log in the directory
	out, err = execute(t, "", "compare", "--no-color", "--export", "result")
	if err != nil {
		t.Fatalf("second compare failed: %v", err)
	}
	if !strings.Contains(out, "Removed: 0\nCleaned: 0\nUnchanged: 1\n") {
		t.Fatalf("exported log must not count as a sample:\n%s", out)
	}
}
