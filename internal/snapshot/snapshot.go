// Package snapshot fingerprints every regular file under a directory.
//
// A Snapshot is immutable once built: it can be shared between readers
// (diffing, rendering, persisting) without locking.
package snapshot

import (
	"time"

	"github.com/keshon/avtally/internal/util"

	"github.com/google/uuid"
)

// Fingerprint pairs a file path with the digest of its content.
type Fingerprint struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// Snapshot maps file paths to content digests for one root at one point in time.
type Snapshot struct {
	id        string
	root      string
	algorithm string
	createdAt time.Time
	skipped   int
	product   string
	files     map[string]string
}

// New builds a snapshot from a path->digest map. The map is copied.
func New(root, algorithm string, files map[string]string) *Snapshot {
	return build(newID(), root, algorithm, time.Now().UTC(), 0, files)
}

func build(id, root, algorithm string, createdAt time.Time, skipped int, files map[string]string) *Snapshot {
	cp := make(map[string]string, len(files))
	for p, d := range files {
		cp[p] = d
	}
	return &Snapshot{
		id:        id,
		root:      root,
		algorithm: algorithm,
		createdAt: createdAt,
		skipped:   skipped,
		files:     cp,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WithProduct returns a copy of s labelled with the anti-malware product it
// was taken for. The file map is shared; neither copy ever mutates it.
func (s *Snapshot) WithProduct(name string) *Snapshot {
	cp := *s
	cp.product = name
	return &cp
}

func (s *Snapshot) ID() string           { return s.id }
func (s *Snapshot) Root() string         { return s.root }
func (s *Snapshot) Algorithm() string    { return s.algorithm }
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

// Skipped is the number of entries dropped because they could not be read.
func (s *Snapshot) Skipped() int { return s.skipped }

// Product is the anti-malware product label, empty when none was set.
func (s *Snapshot) Product() string { return s.product }

// Len returns the number of fingerprinted files. A nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.files)
}

// Digest returns the digest recorded for path.
func (s *Snapshot) Digest(path string) (string, bool) {
	if s == nil {
		return "", false
	}
	d, ok := s.files[path]
	return d, ok
}

func (s *Snapshot) Has(path string) bool {
	_, ok := s.Digest(path)
	return ok
}

// Paths returns all file paths in lexical order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	return util.SortedKeys(s.files)
}

// Fingerprints returns all entries in path order.
func (s *Snapshot) Fingerprints() []Fingerprint {
	paths := s.Paths()
	out := make([]Fingerprint, len(paths))
	for i, p := range paths {
		out[i] = Fingerprint{Path: p, Digest: s.files[p]}
	}
	return out
}
