package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// batchInterval is how long the watcher waits after the last event before
// reanalyzing, so editor save bursts collapse into one batch.
const batchInterval = 2 * time.Second

// WatchConfiguration monitors a configuration dump for file changes and
// reanalyzes modules automatically. Blocks until the context is cancelled.
func WatchConfiguration(ctx context.Context, rootPath string, analyzer *Analyzer) error {
	patterns := LoadGitignore(rootPath)
	matcher := newIgnoreMatcher(patterns)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if shouldSkipDir(path, rootPath, matcher) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("setting up watcher: %w", err)
	}

	changed := make(map[string]bool)
	batchTimer := time.NewTimer(batchInterval)
	batchTimer.Stop()

	fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", rootPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// New directories must be added to the watch set; fsnotify
			// watches are not recursive.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !shouldSkipDir(event.Name, rootPath, matcher) {
						_ = watcher.Add(event.Name)
					}
					continue
				}
			}

			if !shouldWatchFile(event.Name, rootPath, matcher) {
				continue
			}
			relPath, err := filepath.Rel(rootPath, event.Name)
			if err != nil {
				continue
			}
			changed[filepath.ToSlash(relPath)] = true
			batchTimer.Reset(batchInterval)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-batchTimer.C:
			if len(changed) == 0 {
				continue
			}
			if err := processChanges(ctx, rootPath, analyzer, changed); err != nil {
				fmt.Fprintf(os.Stderr, "Error processing changes: %v\n", err)
			}
			changed = make(map[string]bool)
		}
	}
}

// processChanges reanalyzes the batch of changed documents. Deleted files
// are retracted from the registry, the index and the snapshot store.
func processChanges(ctx context.Context, rootPath string, analyzer *Analyzer, changed map[string]bool) error {
	fmt.Printf("Reanalyzing %d changed file(s)...\n", len(changed))

	for relPath := range changed {
		absPath := filepath.Join(rootPath, filepath.FromSlash(relPath))

		info, err := os.Stat(absPath)
		if os.IsNotExist(err) {
			if err := analyzer.RemoveFile(ctx, relPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing %s: %v\n", relPath, err)
			} else {
				fmt.Printf("  Removed: %s\n", relPath)
			}
			continue
		}
		if err != nil || info.IsDir() {
			continue
		}

		content, err := os.ReadFile(absPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", relPath, err)
			continue
		}

		entry := FileEntry{Path: absPath, RelPath: relPath, Content: content}
		if _, err := analyzer.AnalyzeFile(ctx, entry); err != nil {
			fmt.Fprintf(os.Stderr, "Error analyzing %s: %v\n", relPath, err)
			continue
		}
		fmt.Printf("  Reanalyzed: %s\n", relPath)
	}
	return nil
}

// newIgnoreMatcher combines the default ignore patterns with the caller's.
func newIgnoreMatcher(patterns []gitignore.Pattern) gitignore.Matcher {
	all := make([]gitignore.Pattern, 0, len(defaultIgnorePatterns)+len(patterns))
	for _, p := range defaultIgnorePatterns {
		all = append(all, gitignore.ParsePattern(p, nil))
	}
	all = append(all, patterns...)
	return gitignore.NewMatcher(all)
}

// shouldWatchFile reports whether a changed path is a BSL source file that
// is not ignored.
func shouldWatchFile(path, rootPath string, matcher gitignore.Matcher) bool {
	if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	relPath, err := filepath.Rel(rootPath, path)
	if err != nil {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))
	return !matcher.Match(parts, false)
}

// shouldSkipDir reports whether a directory is excluded from watching.
func shouldSkipDir(path, rootPath string, matcher gitignore.Matcher) bool {
	relPath, err := filepath.Rel(rootPath, path)
	if err != nil || relPath == "." {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))
	return matcher.Match(parts, true)
}
