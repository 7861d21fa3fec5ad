package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/keshon/avtally/internal/digest"
	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/util"
)

// ErrCorrupt is returned when a baseline file does not describe a valid snapshot.
var ErrCorrupt = errors.New("corrupt snapshot file")

type fileFormat struct {
	ID        string        `json:"id"`
	Root      string        `json:"root"`
	Algorithm string        `json:"algorithm"`
	CreatedAt time.Time     `json:"created_at"`
	Skipped   int           `json:"skipped"`
	Product   string        `json:"product,omitempty"`
	Files     []Fingerprint `json:"files"`
}

// Save persists the snapshot as JSON at path, atomically.
func (s *Snapshot) Save(fsys fs.FS, path string) error {
	doc := fileFormat{
		ID:        s.id,
		Root:      s.root,
		Algorithm: s.algorithm,
		CreatedAt: s.createdAt,
		Skipped:   s.skipped,
		Product:   s.product,
		Files:     s.Fingerprints(),
	}
	if err := util.WriteJSON(fsys, path, doc); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(fsys fs.FS, path string) (*Snapshot, error) {
	var doc fileFormat
	if err := util.ReadJSON(fsys, path, &doc); err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", path, err)
	}

	if !digest.Valid(doc.Algorithm) {
		return nil, fmt.Errorf("%w %q: unknown algorithm %q", ErrCorrupt, path, doc.Algorithm)
	}

	files := make(map[string]string, len(doc.Files))
	for _, f := range doc.Files {
		if f.Path == "" || f.Digest == "" {
			return nil, fmt.Errorf("%w %q: empty path or digest", ErrCorrupt, path)
		}
		if _, dup := files[f.Path]; dup {
			return nil, fmt.Errorf("%w %q: duplicate path %q", ErrCorrupt, path, f.Path)
		}
		files[f.Path] = f.Digest
	}

	id := doc.ID
	if id == "" {
		id = newID()
	}
	snap := build(id, doc.Root, doc.Algorithm, doc.CreatedAt, doc.Skipped, files)
	snap.product = doc.Product
	return snap, nil
}
