package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keshon/avtally/internal/command"
	"github.com/keshon/avtally/internal/config"
	"github.com/keshon/avtally/internal/digest"
	"github.com/keshon/avtally/internal/fs"
)

func TestUseColor(t *testing.T) {
	if UseColor(config.ColorAlways, true) {
		t.Fatal("--no-color wins over the config")
	}
	if !UseColor(config.ColorAlways, false) {
		t.Fatal("always should enable color")
	}
	if UseColor(config.ColorNever, false) {
		t.Fatal("never should disable color")
	}
}

func TestSetup(t *testing.T) {
	m := fs.NewMemoryFS()
	data := "hash: sha256\nworkers: 3\nexclude: [\"*.tmp\"]\ncolor: never\nlog_level: debug\n"
	if err := m.WriteFile("/avtally.yaml", []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	ctx := &command.Context{Stderr: &stderr, FS: m}
	env, err := Setup(ctx, "/avtally.yaml", false)
	if err != nil {
		t.Fatal(err)
	}
	if env.Color {
		t.Fatal("color: never must disable color")
	}
	if ctx.Log != env.Log {
		t.Fatal("Setup should install the configured logger on the context")
	}

	env.Log.Debug("probe")
	if !strings.Contains(stderr.String(), "probe") {
		t.Fatal("debug level from config was not applied")
	}

	sc := env.Scanner(ctx)
	if sc.Algorithm != digest.SHA256 || sc.Workers != 3 || len(sc.Exclude) != 1 || sc.FS != ctx.FS {
		t.Fatalf("scanner not configured: %+v", sc)
	}
}

func TestSetupMissingConfig(t *testing.T) {
	ctx := &command.Context{Stderr: &bytes.Buffer{}, FS: fs.NewOSFS()}
	if _, err := Setup(ctx, filepath.Join(t.TempDir(), "none.yaml"), false); err == nil {
		t.Fatal("an explicitly named config file must exist")
	}
}

func TestAbsDir(t *testing.T) {
	got, err := AbsDir("samples")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "samples" {
		t.Fatalf("unexpected abs dir %q", got)
	}
	if got, _ := AbsDir(""); got != "" {
		t.Fatal("empty stays empty so validation can report it")
	}
}

func TestStatusLines(t *testing.T) {
	var plain, colored bytes.Buffer
	Success(&plain, false, "saved %d", 3)
	Warn(&colored, true, "careful")

	if plain.String() != "saved 3\n" {
		t.Fatalf("unexpected plain output %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[33m") {
		t.Fatalf("expected yellow escape, got %q", colored.String())
	}
}

func TestExportPath(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"log":          "log.txt",
		"out/log.md":   "out/log.md",
		"results.txt":  "results.txt",
		"dir.d/report": "dir.d/report.txt",
	}
	for in, want := range tests {
		if got := ExportPath(in); got != want {
			t.Errorf("ExportPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInside(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "samples")
	got := Inside(dir,
		filepath.Join(dir, ".avtally-baseline.json"),
		filepath.Join(dir, "sub", "log.txt"),
		filepath.Join(dir+"-other", "x"),
		filepath.Join(string(filepath.Separator), "state", "b.json"),
		"",
	)
	if len(got) != 2 || got[0] != filepath.Join(dir, ".avtally-baseline.json") {
		t.Fatalf("unexpected paths %v", got)
	}
}
