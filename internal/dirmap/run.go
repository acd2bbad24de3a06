package dirmap

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Options configures a scan.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Excludes contains regex patterns matched against slash paths relative to the root.
	Excludes []string
	// Ignores contains doublestar glob patterns matched against relative paths.
	Ignores []string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// Workers caps the number of traversal tasks running at once (0 = GOMAXPROCS).
	Workers int
	// FailFast aborts the scan on the first access error instead of skipping it.
	FailFast bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// DebugWriter receives debug output (default os.Stderr).
	DebugWriter io.Writer
}

// Hooks receives progress notifications during a scan. Both fields are optional.
type Hooks struct {
	// Progress is invoked with the running file and byte counters on each tick.
	Progress func(files, bytes int64)
	// TaskDone is invoked after each traversal task finishes.
	TaskDone func(done, total int)
}

// logger provides conditional debug output.
type logger struct {
	enabled bool
	out     io.Writer
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		fmt.Fprintf(l.out, format, args...)
	}
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for tally
func startProgressReporter(ctx context.Context, c *tally, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// newWalker validates the filters in opt and builds the walker for root.
func newWalker(root string, opt Options, c *tally, log logger) (*walker, error) {
	excludes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	for _, p := range opt.Ignores {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}

	log.printf("[debug]: exclude regexes:\n")

	for _, re := range excludes {
		log.printf("[debug]:   - %s\n", re.String())
	}

	log.printf("[debug]: ignore globs:\n")

	for _, p := range opt.Ignores {
		log.printf("[debug]:   - %s\n", p)
	}

	return &walker{
		root:     root,
		excludes: excludes,
		ignores:  opt.Ignores,
		minSize:  opt.MinSize,
		failFast: opt.FailFast,
		tally:    c,
		log:      log,
	}, nil
}

// resolveRoot returns the absolute, cleaned scan root after checking it is a readable directory.
func resolveRoot(path string) (string, error) {
	if path == "" {
		path = "."
	}

	// filepath.Clean handles both separators and converts to native format
	root, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("accessing path %q: %w", path, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("path %q: %w", path, ErrNotDirectory)
	}

	return root, nil
}

// partition splits the root's children into subdirectories and loose files.
func partition(entries []fs.DirEntry) ([]fs.DirEntry, []fs.DirEntry) {
	var dirs, files []fs.DirEntry

	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	return dirs, files
}

// Run scans opt.Path and returns the merged, sorted result.
//
// Every immediate subdirectory of the root becomes one traversal task; one more
// task measures the files directly in the root. Tasks run on a pool capped at
// opt.Workers, each into its own table, and are merged only after all of them
// have finished.
//
// Unreadable files and directories are recorded in Result.Errors and skipped,
// unless opt.FailFast is set. The scan can be cancelled via ctx.
//
//nolint:funlen // Coordinator reads top to bottom.
func Run(ctx context.Context, opt Options, hooks Hooks) (*Result, error) {
	if opt.DebugWriter == nil {
		opt.DebugWriter = os.Stderr
	}

	log := logger{enabled: opt.Debug, out: opt.DebugWriter}

	root, err := resolveRoot(opt.Path)
	if err != nil {
		return nil, err
	}

	counters := &tally{}

	w, err := newWalker(root, opt, counters, log)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &FilesystemAccessError{Op: "readdir", Path: RootGroup, Err: err}
	}

	dirs, files := partition(entries)

	var scheduled []string

	for _, d := range dirs {
		if w.excluded(d.Name(), true) {
			continue
		}

		scheduled = append(scheduled, filepath.Join(root, d.Name()))
	}

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	total := len(scheduled) + 1
	tables := make([]*Table, total)

	for i := range tables {
		tables[i] = NewTable()
	}

	log.printf("[debug]: scanning %s with %d tasks (%d workers)\n", root, total, workers)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, counters, hooks.Progress, opt.ProgressInterval)

	start := time.Now()

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	var done atomic.Int64

	finish := func() {
		n := int(done.Add(1))
		if hooks.TaskDone != nil {
			hooks.TaskDone(n, total)
		}
	}

	group.Go(func() error {
		defer finish()

		return w.walkRootFiles(gctx, files, tables[0])
	})

	for i, dir := range scheduled {
		table := tables[i+1]

		group.Go(func() error {
			defer finish()

			log.printf("[debug]: walking %s\n", w.relative(dir))

			return w.walkSubtree(gctx, dir, table)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// The parent may have been cancelled after the last callback returned.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := NewTable()
	for _, t := range tables {
		merged.Merge(t)
	}

	fileCount, totalBytes := counters.snapshot()

	result := &Result{
		Root:       filepath.ToSlash(root),
		Buckets:    merged.Sorted(),
		FileCount:  fileCount,
		TotalBytes: totalBytes,
		Tasks:      total,
		Errors:     counters.skipped(),
		Elapsed:    time.Since(start),
	}

	log.printf("[debug]: %d files, %d bytes, %d skipped\n",
		result.FileCount, result.TotalBytes, len(result.Errors))

	return result, nil
}
