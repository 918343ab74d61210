// Package scanner walks directories, picks out source files and runs
// the engine over them. The engine itself never touches the
// filesystem; all I/O lives here.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/shadowai/shadowdetect/internal/engine"
)

// MaxFileSize caps individual files; anything bigger is skipped the
// way the CLI refuses it for single-file analysis.
const MaxFileSize = 5 * 1024 * 1024

// extLanguages maps recognized source extensions to language names
// handed to the engine as hints.
var extLanguages = map[string]string{
	".py":    "python",
	".go":    "go",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rs":    "rust",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".sh":    "bash",
	".bash":  "bash",
	".pl":    "perl",
	".lua":   "lua",
	".dart":  "dart",
	".r":     "r",
	".sql":   "sql",
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
	"build":        true,
}

// LanguageForPath returns the hint for a file path, or "" when the
// extension is not a recognized source extension.
func LanguageForPath(path string) string {
	return extLanguages[strings.ToLower(filepath.Ext(path))]
}

// FileResult is one scanned file's outcome. Err is set when the file
// could not be read or analyzed; the scan itself continues.
type FileResult struct {
	Path     string
	Language string
	Result   *engine.Result
	Err      error
}

// Scanner runs the engine over the source files of a directory.
type Scanner struct {
	Engine *engine.Engine

	// MaxFiles caps how many files one scan analyzes (default 5).
	MaxFiles int

	// Recursive descends into subdirectories.
	Recursive bool

	// Ignore holds doublestar patterns matched against paths relative
	// to the scan root.
	Ignore []string

	// OnFile, when set, is called as each file's analysis finishes.
	OnFile func(path string)
}

// Scan analyzes up to MaxFiles source files under dir, in parallel,
// and returns results ordered by path.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]FileResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", dir)
	}

	maxFiles := s.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 5
	}

	paths, err := s.collect(dir, maxFiles)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFiles)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = s.analyzeFile(gctx, path)
			if s.OnFile != nil {
				s.OnFile(path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// collect gathers up to limit analyzable file paths in sorted order so
// repeated scans of the same tree pick the same files.
func (s *Scanner) collect(root string, limit int) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !s.Recursive || skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if LanguageForPath(path) == "" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		for _, pattern := range s.Ignore {
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
				return nil
			}
		}

		if info, err := d.Info(); err == nil && info.Size() > MaxFileSize {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	if len(paths) > limit {
		paths = paths[:limit]
	}
	return paths, nil
}

func (s *Scanner) analyzeFile(ctx context.Context, path string) FileResult {
	fr := FileResult{Path: path, Language: LanguageForPath(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Err = fmt.Errorf("read %s: %w", path, err)
		return fr
	}

	res, err := s.Engine.Analyze(ctx, string(data), fr.Language)
	if err != nil {
		fr.Err = fmt.Errorf("analyze %s: %w", path, err)
		return fr
	}

	fr.Language = res.Language
	fr.Result = res
	return fr
}
