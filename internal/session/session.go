// Package session drives one measurement: a baseline snapshot, one or more
// follow-up snapshots after the anti-malware scan, and the accumulated log.
//
// The core packages are stateless; the Session is the only holder of the
// baseline between the two scans.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/keshon/avtally/internal/diff"
	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/logging"
	"github.com/keshon/avtally/internal/report"
	"github.com/keshon/avtally/internal/snapshot"
)

var (
	ErrBaselineInFlight  = errors.New("baseline scan already running")
	ErrBaselinePending   = errors.New("baseline scan has not finished yet")
	ErrNoBaseline        = errors.New("no baseline snapshot taken")
	ErrAlgorithmMismatch = errors.New("baseline was hashed with a different algorithm")
	ErrRootMismatch      = errors.New("baseline was taken for a different directory")
)

// Scanner produces snapshots; *snapshot.Scanner satisfies it.
type Scanner interface {
	Scan(ctx context.Context, root string) (*snapshot.Snapshot, error)
}

// BaselineResult is delivered once on the channel returned by StartBaseline.
type BaselineResult struct {
	Snapshot *snapshot.Snapshot
	Err      error
}

type Session struct {
	fsys    fs.FS
	scanner Scanner
	product string
	dir     string
	log     logging.Logger

	mu         sync.Mutex
	baseline   *snapshot.Snapshot
	running    bool
	transcript strings.Builder
}

// New validates the inputs and returns an idle session for dir.
func New(fsys fs.FS, scanner Scanner, product, dir string, log logging.Logger) (*Session, error) {
	if err := ValidateScanner(product); err != nil {
		return nil, err
	}
	if err := ValidateDirectory(fsys, dir); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		fsys:    fsys,
		scanner: scanner,
		product: strings.TrimSpace(product),
		dir:     filepath.Clean(dir),
		log:     log,
	}, nil
}

func (s *Session) Product() string   { return s.product }
func (s *Session) Directory() string { return s.dir }

// StartBaseline scans the directory in the background. The returned channel
// yields exactly one result and is then closed. The baseline is installed
// only once the scan has completed, so no reader ever sees a partial one.
func (s *Session) StartBaseline(ctx context.Context) (<-chan BaselineResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrBaselineInFlight
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info("baseline scan started", "dir", s.dir, "scanner", s.product)

	done := make(chan BaselineResult, 1)
	go func() {
		defer close(done)

		snap, err := s.scanner.Scan(ctx, s.dir)
		if err == nil {
			snap = snap.WithProduct(s.product)
		}

		s.mu.Lock()
		s.running = false
		if err == nil {
			s.baseline = snap
			s.transcript.Reset()
			s.transcript.WriteString(report.RenderHeader(s.header()))
		}
		s.mu.Unlock()

		if err != nil {
			s.log.Warn("baseline scan failed", "dir", s.dir, "err", err)
		} else {
			s.log.Info("baseline scan finished", "dir", s.dir, "files", snap.Len(), "skipped", snap.Skipped())
		}
		done <- BaselineResult{Snapshot: snap, Err: err}
	}()

	return done, nil
}

// Running reports whether a baseline scan is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Baseline returns the installed baseline, or nil.
func (s *Session) Baseline() *snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

// SetBaseline installs a previously saved snapshot as the baseline.
func (s *Session) SetBaseline(snap *snapshot.Snapshot) error {
	if snap == nil {
		return ErrNoBaseline
	}
	if filepath.Clean(snap.Root()) != s.dir {
		return fmt.Errorf("%w: baseline %q, directory %q", ErrRootMismatch, snap.Root(), s.dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBaselineInFlight
	}
	s.baseline = snap
	s.transcript.Reset()
	s.transcript.WriteString(report.RenderHeader(s.header()))
	return nil
}

// Continue takes a fresh snapshot and diffs it against the baseline.
// The baseline is never replaced, so repeated calls all compare against
// the state before the anti-malware scan.
func (s *Session) Continue(ctx context.Context) (*diff.Report, error) {
	s.mu.Lock()
	baseline, running := s.baseline, s.running
	s.mu.Unlock()

	if running {
		return nil, ErrBaselinePending
	}
	if baseline == nil {
		return nil, ErrNoBaseline
	}
	if err := ValidateDirectory(s.fsys, s.dir); err != nil {
		return nil, err
	}

	current, err := s.scanner.Scan(ctx, s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", s.dir, err)
	}
	if current.Algorithm() != baseline.Algorithm() {
		return nil, fmt.Errorf("%w: baseline %s, current %s", ErrAlgorithmMismatch, baseline.Algorithm(), current.Algorithm())
	}

	r := diff.Diff(baseline, current)
	s.log.Info("comparison finished",
		"removed", len(r.Removed),
		"cleaned", len(r.Changed),
		"unchanged", len(r.Unchanged))

	s.mu.Lock()
	s.transcript.WriteString(report.RenderResult(r))
	s.mu.Unlock()

	return r, nil
}

// Header describes the session for report rendering.
func (s *Session) Header() report.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header()
}

func (s *Session) header() report.Header {
	return report.Header{Scanner: s.product, Directory: s.dir, Files: s.baseline.Len()}
}

// Log returns everything rendered so far in this session.
func (s *Session) Log() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.String()
}

// Export writes the session log to dest. The in-memory log is kept on failure.
func (s *Session) Export(dest string) error {
	return report.Export(s.fsys, s.Log(), dest)
}
