package materialize

import (
	"path"
	"path/filepath"
	"strings"
)

// Skipper decides whether an entry of the source tree is left out of a copy.
// path is the absolute source path of the entry. Skipping a directory skips
// its whole subtree.
type Skipper interface {
	ShouldSkip(path string) bool
}

// SkipFunc adapts a function to a Skipper.
type SkipFunc func(path string) bool

func (f SkipFunc) ShouldSkip(path string) bool { return f(path) }

// Never skips nothing.
var Never Skipper = SkipFunc(func(string) bool { return false })

type anySkipper []Skipper

func (a anySkipper) ShouldSkip(p string) bool {
	for _, s := range a {
		if s != nil && s.ShouldSkip(p) {
			return true
		}
	}
	return false
}

// Any skips an entry when at least one of skippers does.
func Any(skippers ...Skipper) Skipper {
	return anySkipper(skippers)
}

type matchKind int

const (
	literalMatch matchKind = iota
	dirMatch
	globMatch
)

type pattern struct {
	raw      string
	clean    string
	kind     matchKind
	basename bool
}

// PatternSkipper matches source paths, relative to a root, against a set of
// gitignore-style patterns:
//
//	package.json     basename anywhere in the tree
//	/package.json    only at the root
//	/database/       the directory and everything below it
//	*.log            glob against the basename
//	/src/*.tmp       glob against the relative path
type PatternSkipper struct {
	root     string
	patterns []pattern
}

// NewPatternSkipper builds a skipper for paths below root.
func NewPatternSkipper(root string, patterns ...string) *PatternSkipper {
	s := &PatternSkipper{root: filepath.Clean(root)}
	for _, p := range patterns {
		s.add(p)
	}
	return s
}

func (s *PatternSkipper) add(raw string) {
	p := filepath.ToSlash(strings.TrimSpace(raw))
	if p == "" || p == "/" {
		return
	}

	pat := pattern{raw: raw}

	anchored := strings.HasPrefix(p, "/")
	p = strings.TrimPrefix(p, "/")

	if strings.HasSuffix(p, "/") {
		pat.kind = dirMatch
		p = strings.TrimSuffix(p, "/")
	} else if strings.ContainsAny(p, "*?[") {
		pat.kind = globMatch
	}

	// Without a separator (and without a leading slash) the pattern matches a
	// basename at any depth.
	pat.basename = !anchored && !strings.Contains(p, "/")
	pat.clean = p
	s.patterns = append(s.patterns, pat)
}

// Patterns returns the patterns as given.
func (s *PatternSkipper) Patterns() []string {
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.raw
	}
	return out
}

func (s *PatternSkipper) ShouldSkip(p string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(p))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)

	for _, pat := range s.patterns {
		subject := rel
		if pat.basename {
			subject = base
		}

		switch pat.kind {
		case literalMatch:
			if subject == pat.clean {
				return true
			}
		case dirMatch:
			if subject == pat.clean || strings.HasPrefix(subject, pat.clean+"/") {
				return true
			}
		case globMatch:
			if ok, err := path.Match(pat.clean, subject); err == nil && ok {
				return true
			}
		}
	}
	return false
}
