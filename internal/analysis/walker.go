// Package analysis provides the per-document analysis pipeline.
//
// It walks a configuration source tree, parses each BSL document, registers
// its symbol tree in the module registry, and replaces the document's edges
// in the reference index. The watcher re-runs the same path for files that
// change on disk.
package analysis

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileEntry represents a BSL file to be analyzed.
type FileEntry struct {
	// Path is the absolute file path.
	Path string

	// RelPath is the path relative to the configuration root, with forward
	// slashes. It doubles as the document URI.
	RelPath string

	// Content is the file content.
	Content []byte
}

// Supported BSL source extensions.
var supportedExtensions = map[string]bool{
	".bsl": true,
	".os":  true,
}

// Default patterns to ignore (in addition to .gitignore).
var defaultIgnorePatterns = []string{
	".git/",
	".bsema/",
	".vscode/",
	"node_modules/",
}

// WalkConfiguration walks the configuration root and returns all BSL files.
func WalkConfiguration(rootPath string, patterns []gitignore.Pattern) ([]FileEntry, error) {
	allPatterns := make([]gitignore.Pattern, 0, len(defaultIgnorePatterns)+len(patterns))
	for _, p := range defaultIgnorePatterns {
		allPatterns = append(allPatterns, gitignore.ParsePattern(p, nil))
	}
	allPatterns = append(allPatterns, patterns...)
	matcher := gitignore.NewMatcher(allPatterns)

	var entries []FileEntry
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		parts := strings.Split(relPath, string(filepath.Separator))

		if d.IsDir() {
			if relPath != "." && matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if matcher.Match(parts, false) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		entries = append(entries, FileEntry{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadGitignore loads .gitignore patterns from the configuration root.
// A missing file yields no patterns.
func LoadGitignore(rootPath string) []gitignore.Pattern {
	content, err := os.ReadFile(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns
}
