package snapshot

import (
	"path"
	"path/filepath"
	"strings"
)

// Exclude matches root-relative slash paths against glob patterns.
// Patterns without a slash match a single name at any depth; patterns with
// a slash match the whole relative path, and "**" spans any number of segments.
type Exclude struct {
	patterns []string
	paths    map[string]struct{}
}

func NewExclude(patterns []string) *Exclude {
	m := &Exclude{}
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		p = strings.Trim(p, "/")
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

func (m *Exclude) omit(p string) {
	if m.paths == nil {
		m.paths = make(map[string]struct{})
	}
	m.paths[p] = struct{}{}
}

// Omitted reports whether the full path p was listed with omit.
func (m *Exclude) Omitted(p string) bool {
	if m == nil {
		return false
	}
	_, ok := m.paths[p]
	return ok
}

// Match returns true if rel should be left out of the snapshot.
func (m *Exclude) Match(rel string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	rel = path.Clean(filepath.ToSlash(rel))
	base := path.Base(rel)

	for _, pat := range m.patterns {
		if !strings.Contains(pat, "/") {
			if ok, _ := path.Match(pat, base); ok {
				return true
			}
			continue
		}
		if matchSegments(strings.Split(pat, "/"), strings.Split(rel, "/")) {
			return true
		}
	}
	return false
}

// matchSegments matches pattern segments recursively
func matchSegments(pats, parts []string) bool {
	for len(pats) > 0 {
		p := pats[0]
		pats = pats[1:]

		if p == "**" {
			if len(pats) == 0 {
				return true // trailing ** matches anything
			}
			for i := 0; i <= len(parts); i++ {
				if matchSegments(pats, parts[i:]) {
					return true
				}
			}
			return false
		}

		if len(parts) == 0 {
			return false
		}

		if ok, _ := path.Match(p, parts[0]); !ok {
			return false
		}
		parts = parts[1:]
	}

	return len(parts) == 0
}
