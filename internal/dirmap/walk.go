package dirmap

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// walker applies the scan filters and records measured files into task tables.
type walker struct {
	root     string
	excludes []*regexp.Regexp
	ignores  []string
	minSize  int64
	failFast bool
	tally    *tally
	log      logger
}

// relative returns the slash path of path relative to the scan root.
func (w *walker) relative(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}

// excluded reports whether rel is filtered out by an exclusion regex or an ignore glob.
// Directories are matched with a trailing slash.
func (w *walker) excluded(rel string, isDir bool) bool {
	candidate := rel
	if isDir {
		candidate += "/"
	}

	if re := shouldExcludeByPattern(candidate, w.excludes); re != nil {
		w.log.printf("[debug]: excluding %s\n", candidate)
		w.log.printf("	 matched regex: %s\n", re.String())

		return true
	}

	if pattern := shouldIgnoreByGlob(rel, isDir, w.ignores); pattern != "" {
		w.log.printf("[debug]: ignoring %s\n", candidate)
		w.log.printf("	 matched glob: %s\n", pattern)

		return true
	}

	return false
}

// skip records an access error. It returns the error when the scan is fail-fast.
func (w *walker) skip(op, rel string, err error) error {
	accessErr := &FilesystemAccessError{Op: op, Path: rel, Err: err}

	w.log.printf("[debug]: skipping %s: %v\n", rel, err)

	if w.failFast {
		return accessErr
	}

	w.tally.addError(accessErr)

	return nil
}

// record measures a regular file and appends it to table under rel.
func (w *walker) record(table *Table, rel string, d fs.DirEntry) error {
	if !d.Type().IsRegular() {
		return nil
	}

	if w.excluded(rel, false) {
		return nil
	}

	info, err := d.Info()
	if err != nil {
		return w.skip("stat", rel, err)
	}

	if info.Size() < w.minSize {
		return nil
	}

	table.Add(rel, FileEntry{Name: d.Name(), Size: info.Size()})
	w.tally.add(info.Size())

	return nil
}

// visit returns the fastwalk callback recording into table.
//
//nolint:varnamelen // d is standard for DirEntry
func (w *walker) visit(ctx context.Context, table *Table) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		rel := w.relative(path)

		if err != nil {
			op := "walk"
			if d != nil && d.IsDir() {
				op = "readdir"
			}

			// fastwalk does not descend into a directory it failed to read,
			// and a SkipDir returned here would surface as the walk's error.
			return w.skip(op, rel, err)
		}

		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if w.excluded(rel, true) {
				return filepath.SkipDir
			}

			return nil
		}

		return w.record(table, rel, d)
	}
}

// walkSubtree records every regular file below dir into table.
// A dir that vanished or became unreadable since it was listed is skipped like any other entry.
func (w *walker) walkSubtree(ctx context.Context, dir string, table *Table) error {
	if _, err := os.Lstat(dir); err != nil {
		return w.skip("stat", w.relative(dir), err)
	}

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	err := fastwalk.Walk(conf, dir, w.visit(ctx, table))

	// fastwalk stats dir before the first callback; that failure is not routed through visit.
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Path == dir {
		return w.skip("stat", w.relative(dir), err)
	}

	return err
}

// walkRootFiles records the loose files directly under the scan root.
func (w *walker) walkRootFiles(ctx context.Context, files []fs.DirEntry, table *Table) error {
	for _, d := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := w.record(table, d.Name(), d); err != nil {
			return err
		}
	}

	return nil
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	for _, re := range patterns {
		if re.MatchString(path) {
			return re
		}
	}

	return nil
}

// shouldIgnoreByGlob returns the first doublestar pattern matching rel, or "".
func shouldIgnoreByGlob(rel string, isDir bool, patterns []string) string {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return pattern
		}

		if isDir && !strings.HasSuffix(rel, "/") {
			if matched, err := doublestar.Match(pattern, rel+"/"); err == nil && matched {
				return pattern
			}
		}
	}

	return ""
}
