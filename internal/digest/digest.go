// Package digest computes content fingerprints.
//
// A fingerprint covers file bytes only; names, timestamps and permissions
// never take part in it.
package digest

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"sort"

	"github.com/keshon/avtally/internal/fs"

	"github.com/zeebo/xxh3"
)

const (
	XXH3   = "xxh3"
	MD5    = "md5"
	SHA256 = "sha256"
)

// Default is used when no algorithm is configured.
const Default = XXH3

var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

var algorithms = map[string]func() hash.Hash{
	XXH3:   func() hash.Hash { return xxh128{xxh3.New()} },
	MD5:    md5.New,
	SHA256: sha256.New,
}

// xxh128 exposes the 128-bit xxh3 sum through hash.Hash.
type xxh128 struct {
	*xxh3.Hasher
}

func (h xxh128) Size() int { return 16 }

func (h xxh128) Sum(b []byte) []byte {
	sum := h.Hasher.Sum128().Bytes()
	return append(b, sum[:]...)
}

// New returns a fresh hasher for algo.
func New(algo string) (hash.Hash, error) {
	mk, ok := algorithms[algo]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	return mk(), nil
}

// Valid reports whether algo is supported.
func Valid(algo string) bool {
	_, ok := algorithms[algo]
	return ok
}

// Algorithms lists supported algorithm names.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for n := range algorithms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bytes returns the hex digest of data.
func Bytes(algo string, data []byte) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Reader returns the hex digest of everything read from r.
func Reader(algo string, r io.Reader) (string, error) {
	h, err := New(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File digests the whole content of path through fsys.
func File(fsys fs.FS, algo string, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, err := Reader(algo, io.NewSectionReader(f, 0, int64(f.Len())))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return sum, nil
}
