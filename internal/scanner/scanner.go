package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/noslop/pkg/config"
	"github.com/panbanda/noslop/pkg/parser"
)

// PathError reports a scan root that cannot be analyzed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ErrNotDirectory is wrapped by PathError when the root is a regular file.
var ErrNotDirectory = errors.New("not a directory")

// Scanner finds Python source files in a directory.
type Scanner struct {
	config *config.Config
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// CheckRoot verifies that root exists and is a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &PathError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return &PathError{Path: root, Err: ErrNotDirectory}
	}
	return nil
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// matcher combines config patterns and, when enabled, .gitignore patterns.
// Paths passed to match are relative to the git root when one was used,
// otherwise relative to the scan root.
type matcher struct {
	gitignore gitignore.Matcher
	prefix    []string
}

func (s *Scanner) loadMatcher(absRoot string) *matcher {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	m := &matcher{}
	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(absRoot); gitRoot != "" {
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
			if rel, err := filepath.Rel(gitRoot, absRoot); err == nil && rel != "." {
				m.prefix = strings.Split(rel, string(filepath.Separator))
			}
		}
	}

	if len(patterns) == 0 {
		return nil
	}
	m.gitignore = gitignore.NewMatcher(patterns)
	return m
}

func (m *matcher) match(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))
	if len(m.prefix) > 0 {
		parts = append(append([]string{}, m.prefix...), parts...)
	}
	return m.gitignore.Match(parts, isDir)
}

// ExcludedDir reports whether a directory with this base name is never entered.
func (s *Scanner) ExcludedDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, dir := range s.config.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}

// Files lazily yields every Python file under root. Directories whose name
// starts with a dot are never entered; the root itself is always entered.
// Each iteration walks the tree afresh. Walk errors for individual entries
// are skipped.
func (s *Scanner) Files(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return
		}
		if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
			absRoot = resolved
		}

		m := s.loadMatcher(absRoot)

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}

			relPath, _ := filepath.Rel(root, path)
			if relPath == "." {
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				resolved, err := filepath.EvalSymlinks(path)
				if err != nil || !isWithinRoot(resolved, absRoot) {
					return nil
				}
			}

			if d.IsDir() {
				if s.ExcludedDir(d.Name()) || m.match(relPath, true) {
					return filepath.SkipDir
				}
				return nil
			}

			if parser.DetectLanguage(path) == parser.LangUnknown {
				return nil
			}
			if m.match(relPath, false) {
				return nil
			}
			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// ScanDir recursively scans a directory for Python files.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	files := make([]string, 0, 256)
	for path := range s.Files(root) {
		files = append(files, path)
	}
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	if !strings.HasPrefix(absPath, root+string(filepath.Separator)) && absPath != root {
		return false
	}

	return true
}
