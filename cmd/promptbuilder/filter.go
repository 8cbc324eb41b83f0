package main

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// namePattern is one exclusion glob. A pattern that does not compile is kept
// as a never-matching entry so callers never deal with the failure.
type namePattern struct {
	glob  string
	valid bool
}

func compilePattern(glob string) namePattern {
	return namePattern{glob: glob, valid: doublestar.ValidatePattern(glob)}
}

func (p namePattern) Match(name string) bool {
	if !p.valid {
		return false
	}
	matched, err := doublestar.Match(p.glob, name)
	return err == nil && matched
}

// Filter handles file exclusion by base name
type Filter struct {
	patterns  []namePattern
	gitIgnore *ignore.GitIgnore
	reserved  map[string]bool
}

// NewFilter compiles the exclusion globs for dir. Invalid globs are reported
// and degrade to patterns that match nothing. When useGitIgnore is set, the
// directory's .gitignore (if any) is also consulted.
func NewFilter(dir string, globs []string, useGitIgnore bool, rep *reporter) *Filter {
	f := &Filter{
		patterns: make([]namePattern, 0, len(globs)),
		reserved: make(map[string]bool),
	}

	for _, glob := range globs {
		p := compilePattern(glob)
		if !p.valid {
			rep.Warnf("Invalid ignore pattern '%s'. Ignoring.", glob)
		}
		f.patterns = append(f.patterns, p)
	}

	if useGitIgnore {
		gitIgnorePath := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			gitIgnore, err := ignore.CompileIgnoreFile(gitIgnorePath)
			if err != nil {
				rep.Warnf("could not parse %s: %v", gitIgnorePath, err)
			} else {
				f.gitIgnore = gitIgnore
			}
		}
	}

	return f
}

// Reserve always excludes the entry with the given base name.
func (f *Filter) Reserve(name string) {
	f.reserved[name] = true
}

// ShouldSkip returns true if the entry with the given base name is excluded
func (f *Filter) ShouldSkip(name string) bool {
	if f.reserved[name] {
		return true
	}
	if matchesAnyPattern(name, f.patterns) {
		return true
	}
	return f.gitIgnore != nil && f.gitIgnore.MatchesPath(name)
}

func matchesAnyPattern(name string, patterns []namePattern) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
