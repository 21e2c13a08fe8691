// Package driver walks the filesystem and feeds (path, content) pairs into
// the ingestion engine. The engine itself never touches directories or
// ignore rules; that split lives here.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/quarry-dev/quarry/internal/config"
	"github.com/quarry-dev/quarry/internal/ingest"
)

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery finds the source files to ingest under one root.
type Discovery struct {
	rootDir   string
	include   []compiledPattern
	ignore    []compiledPattern
	gitignore *ignore.GitIgnore
}

// NewDiscovery compiles the configured patterns. When cfg.UseGitignore is
// set and the root has a .gitignore, its rules apply on top of the ignore
// patterns.
func NewDiscovery(rootDir string, cfg config.PathsConfig) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	for _, pattern := range cfg.Include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile include pattern %q: %w", pattern, err)
		}
		d.include = append(d.include, compiledPattern{pattern: pattern, glob: g})
	}
	for _, pattern := range cfg.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
		}
		d.ignore = append(d.ignore, compiledPattern{pattern: pattern, glob: g})
	}

	if cfg.UseGitignore {
		giPath := filepath.Join(rootDir, ".gitignore")
		if _, err := os.Stat(giPath); err == nil {
			gi, err := ignore.CompileIgnoreFile(giPath)
			if err != nil {
				return nil, fmt.Errorf("compile %s: %w", giPath, err)
			}
			d.gitignore = gi
		}
	}
	return d, nil
}

// Discover walks the tree and returns matching files as slash-separated
// paths relative to the root, in walk order.
func (d *Discovery) Discover() ([]string, error) {
	var out []string
	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.shouldIgnore(relPath) {
			return nil
		}
		if d.matchesAnyPattern(relPath, d.include) {
			out = append(out, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.rootDir, err)
	}
	return out, nil
}

// ReadAll loads the discovered files into engine inputs. A file that
// disappears between discovery and read is skipped, not fatal; watch mode
// races deletes all the time.
func (d *Discovery) ReadAll(paths []string) ([]ingest.FileInput, error) {
	out := make([]ingest.FileInput, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(filepath.Join(d.rootDir, filepath.FromSlash(p)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		out = append(out, ingest.FileInput{Path: p, Content: content})
	}
	return out, nil
}

// Rel converts an absolute path under the root to the engine's relative
// slash form. Paths outside the root come back unchanged.
func (d *Discovery) Rel(path string) string {
	rel, err := filepath.Rel(d.rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// shouldIgnore checks the quarry directory, ignore patterns, and gitignore
// rules.
func (d *Discovery) shouldIgnore(relPath string) bool {
	if strings.HasPrefix(relPath, ".quarry/") || relPath == ".quarry" || relPath == ".git" {
		return true
	}
	if d.matchesAnyPattern(relPath, d.ignore) {
		return true
	}
	// A bare directory name should match its "dir/**" ignore pattern.
	if d.matchesAnyPattern(relPath+"/**", d.ignore) {
		return true
	}
	return d.gitignore != nil && d.gitignore.MatchesPath(relPath)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (d *Discovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	// Root-level files have no slash; let "**/*.py" still match "main.py".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if simplified, ok := strings.CutPrefix(cp.pattern, "**/"); ok {
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}
	return false
}
