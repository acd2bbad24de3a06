package dirmap

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// RootGroup is the top-level group of files that sit directly in the scan root.
const RootGroup = "."

// FileEntry represents a single measured file.
type FileEntry struct {
	// Name is the base name of the file.
	Name string `json:"name"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Bucket holds every file recorded under one relative path.
type Bucket struct {
	// Path is the slash path relative to the scan root.
	Path string `json:"path"`
	// Files are the entries recorded under Path.
	Files []FileEntry `json:"files"`
}

// Size returns the cumulative size of the bucket's files.
func (b Bucket) Size() int64 {
	var total int64
	for _, f := range b.Files {
		total += f.Size
	}

	return total
}

// Group returns the bucket's top-level group.
func (b Bucket) Group() string {
	return TopLevelGroup(b.Path)
}

// Group is a contiguous run of buckets sharing a top-level group.
type Group struct {
	// Name is the first path segment, or RootGroup for loose root files.
	Name string `json:"name"`
	// Size is the cumulative size of the group's buckets.
	Size int64 `json:"size"`
	// Buckets are the group's buckets in sorted order.
	Buckets []Bucket `json:"buckets"`
}

// TopLevelGroup returns the first segment of a slash-separated relative path.
// Keys without a separator name files directly in the root and map to RootGroup.
func TopLevelGroup(key string) string {
	key = strings.TrimPrefix(key, "./")

	group, _, found := strings.Cut(key, "/")
	if !found {
		return RootGroup
	}

	return group
}

// Table maps relative paths to their file entries.
// It is safe for concurrent use; Add never overwrites an existing key.
type Table struct {
	mu      sync.Mutex // Protect concurrent access
	entries map[string][]FileEntry
	count   int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string][]FileEntry)}
}

// Add appends entry under key. This operation is protected by a mutex
// since fastwalk calls the callback from multiple goroutines concurrently.
func (t *Table) Add(key string, entry FileEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[key] = append(t.entries[key], entry)
	t.count++
}

// Merge appends every entry of other into t.
func (t *Table) Merge(other *Table) {
	if other == nil || other == t {
		return
	}

	// Snapshot other first so the two locks are never held together.
	other.mu.Lock()

	snapshot := make(map[string][]FileEntry, len(other.entries))
	for key, files := range other.entries {
		snapshot[key] = append([]FileEntry(nil), files...)
	}

	other.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	for key, files := range snapshot {
		t.entries[key] = append(t.entries[key], files...)
		t.count += len(files)
	}
}

// Len returns the number of recorded file entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}

// Sorted returns the table's buckets ordered by top-level group, then by path.
// The returned buckets are copies and do not alias the table.
func (t *Table) Sorted() []Bucket {
	t.mu.Lock()
	defer t.mu.Unlock()

	buckets := make([]Bucket, 0, len(t.entries))
	for key, files := range t.entries {
		buckets = append(buckets, Bucket{Path: key, Files: append([]FileEntry(nil), files...)})
	}

	sort.Slice(buckets, func(i, j int) bool {
		gi, gj := buckets[i].Group(), buckets[j].Group()
		if gi != gj {
			return gi < gj
		}

		return buckets[i].Path < buckets[j].Path
	})

	return buckets
}

// Result holds the finalized output of a scan.
type Result struct {
	// Root is the absolute scan root.
	Root string `json:"root"`
	// Buckets are sorted by top-level group, then by path.
	Buckets []Bucket `json:"buckets"`
	// FileCount is the total number of measured files.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all measured files.
	TotalBytes int64 `json:"total_bytes"`
	// Tasks is the number of traversal tasks that ran, including the root task.
	Tasks int `json:"tasks"`
	// Errors are the access errors that were skipped.
	Errors []*FilesystemAccessError `json:"errors"`
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// Groups derives the top-level groups from the sorted buckets.
func (r *Result) Groups() []Group {
	var groups []Group

	for _, b := range r.Buckets {
		name := b.Group()
		if len(groups) == 0 || groups[len(groups)-1].Name != name {
			groups = append(groups, Group{Name: name})
		}

		g := &groups[len(groups)-1]
		g.Size += b.Size()
		g.Buckets = append(g.Buckets, b)
	}

	return groups
}

// tally tracks scan-wide counters and skipped errors for progress reporting.
type tally struct {
	mu         sync.Mutex // Protect concurrent access
	fileCount  int64
	totalBytes int64
	errors     []*FilesystemAccessError
}

// add records one measured file.
func (c *tally) add(size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fileCount++
	c.totalBytes += size
}

// addError records a skipped access error.
func (c *tally) addError(err *FilesystemAccessError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors = append(c.errors, err)
}

// snapshot returns the current file and byte counters.
func (c *tally) snapshot() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fileCount, c.totalBytes
}

// skipped returns the recorded errors sorted by path.
func (c *tally) skipped() []*FilesystemAccessError {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := append([]*FilesystemAccessError(nil), c.errors...)
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Path < errs[j].Path
	})

	return errs
}
