package session_test

import (
	"errors"
	"testing"

	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/session"
)

func TestValidateDirectory(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("/ok", 0o755)
	m.MkdirAll("/locked", 0o755)
	m.WriteFile("/file", []byte("x"), 0o644)
	m.Deny("/locked")

	tests := []struct {
		path string
		want error
	}{
		{"/ok", nil},
		{"", session.ErrEmptyInput},
		{"   ", session.ErrEmptyInput},
		{"/missing", session.ErrNotExist},
		{"/file", session.ErrNotDirectory},
		{"/locked", session.ErrNotReadable},
	}
	for _, tt := range tests {
		err := session.ValidateDirectory(m, tt.path)
		if tt.want == nil {
			if err != nil {
				t.Errorf("%q: unexpected error %v", tt.path, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%q: got %v, want %v", tt.path, err, tt.want)
		}
	}
}

func TestValidateDirectoryOSFS(t *testing.T) {
	if err := session.ValidateDirectory(fs.NewOSFS(), t.TempDir()); err != nil {
		t.Fatalf("temp dir should validate: %v", err)
	}
}

func TestValidateScanner(t *testing.T) {
	if err := session.ValidateScanner("Defender"); err != nil {
		t.Fatal(err)
	}
	if err := session.ValidateScanner(" "); !errors.Is(err, session.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
