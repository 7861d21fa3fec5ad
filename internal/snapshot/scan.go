package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keshon/avtally/internal/digest"
	"github.com/keshon/avtally/internal/fs"
	"github.com/keshon/avtally/internal/logging"
	"github.com/keshon/avtally/internal/util"
)

const queueSize = 64

// Scanner builds snapshots. The zero value is not usable; set FS at least.
type Scanner struct {
	FS        fs.FS
	Algorithm string   // digest algorithm, digest.Default when empty
	Workers   int      // hashing goroutines, one per CPU when <= 0
	Exclude   []string // glob patterns relative to the root
	Omit      []string // exact paths left out, such as the tool's own output files
	Logger    logging.Logger

	// OnFile is called once per fingerprinted file, from a single goroutine.
	OnFile func(path string)
}

// NewScanner creates a Scanner with default settings.
func NewScanner(fsys fs.FS, algorithm string) *Scanner {
	return &Scanner{FS: fsys, Algorithm: algorithm}
}

type result struct {
	path   string
	digest string
	err    error
}

// Scan fingerprints every regular file reachable under root.
//
// Files or directories that cannot be read are skipped and the scan goes on;
// they are only counted in Snapshot.Skipped. The root is not validated here:
// an unlistable root yields an empty snapshot. If ctx is cancelled the
// partial result is dropped and ctx.Err() is returned.
func (s *Scanner) Scan(ctx context.Context, root string) (*Snapshot, error) {
	algo := s.Algorithm
	if algo == "" {
		algo = digest.Default
	}
	if !digest.Valid(algo) {
		return nil, fmt.Errorf("scan %q: %w: %q", root, digest.ErrUnknownAlgorithm, algo)
	}
	log := s.Logger
	if log == nil {
		log = logging.Nop()
	}

	root = filepath.Clean(root)
	exclude := NewExclude(s.Exclude)
	for _, p := range s.Omit {
		exclude.omit(filepath.Clean(p))
	}
	started := time.Now()

	jobs := make(chan string, queueSize)
	results := make(chan result, queueSize)
	var dirSkipped atomic.Int64

	// Walk
	go func() {
		defer close(jobs)
		s.walkDir(ctx, root, root, exclude, jobs, &dirSkipped, log)
	}()

	// Hash
	workers := util.WorkerCount(s.Workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for p := range jobs {
				sum, err := digest.File(s.FS, algo, p)
				select {
				case results <- result{path: p, digest: sum, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Merge
	files := make(map[string]string)
	skipped := 0
	for r := range results {
		if r.err != nil {
			skipped++
			log.Debug("skip unreadable file", "path", r.path, "err", r.err)
			continue
		}
		files[r.path] = r.digest
		if s.OnFile != nil {
			s.OnFile(r.path)
		}
	}

	if err := ctx.Err(); err != nil {
		log.Info("scan cancelled", "root", root, "err", err)
		return nil, err
	}

	skipped += int(dirSkipped.Load())
	log.Info("scan complete",
		"root", root,
		"files", len(files),
		"skipped", skipped,
		"algorithm", algo,
		"elapsed", time.Since(started).Round(time.Millisecond))

	return build(newID(), root, algo, time.Now().UTC(), skipped, files), nil
}

func (s *Scanner) walkDir(
	ctx context.Context,
	root, dir string,
	exclude *Exclude,
	jobs chan<- string,
	skipped *atomic.Int64,
	log logging.Logger,
) {
	entries, err := s.FS.ReadDir(dir)
	if err != nil {
		skipped.Add(1)
		log.Debug("skip unreadable directory", "path", dir, "err", err)
		return
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}

		p := filepath.Join(dir, e.Name())
		if exclude.Omitted(p) {
			continue
		}
		if rel, err := filepath.Rel(root, p); err == nil && exclude.Match(rel) {
			continue
		}

		switch {
		case e.IsDir():
			s.walkDir(ctx, root, p, exclude, jobs, skipped, log)
			continue

		case e.Type()&os.ModeSymlink != 0:
			// Links to files are fingerprinted as their target; links to directories are not followed.
			fi, err := s.FS.Stat(p)
			if err != nil {
				skipped.Add(1)
				log.Debug("skip dangling link", "path", p, "err", err)
				continue
			}
			if !fi.Mode().IsRegular() {
				continue
			}

		case !e.Type().IsRegular():
			// pipes, sockets, devices
			continue
		}

		select {
		case jobs <- p:
		case <-ctx.Done():
			return
		}
	}
}
