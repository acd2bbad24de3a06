package dirmap

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// writeFile creates root/rel filled with size bytes.
func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatal(err)
	}
}

// statTotal sums the sizes of every regular file below root.
func statTotal(t *testing.T, root string) (int64, int) {
	t.Helper()

	var (
		total int64
		count int
	)

	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}

			total += info.Size()
			count++
		}

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	return total, count
}

func TestRunScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/x.txt", 500)
	writeFile(t, root, "a/y.txt", 1500)
	writeFile(t, root, "b/z.txt", 2048)

	result, err := Run(context.Background(), Options{Path: root}, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalBytes != 4048 {
		t.Errorf("expected 4048 total bytes, got %d", result.TotalBytes)
	}

	if result.FileCount != 3 {
		t.Errorf("expected 3 files, got %d", result.FileCount)
	}

	if result.Tasks != 3 {
		t.Errorf("expected 3 tasks (2 subdirectories + root), got %d", result.Tasks)
	}

	groups := result.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	if groups[0].Name != "a" || groups[0].Size != 2000 {
		t.Errorf("expected group a with 2000 bytes, got %s with %d", groups[0].Name, groups[0].Size)
	}

	if groups[1].Name != "b" || groups[1].Size != 2048 {
		t.Errorf("expected group b with 2048 bytes, got %s with %d", groups[1].Name, groups[1].Size)
	}

	paths := make([]string, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		paths = append(paths, b.Path)
	}

	if got := strings.Join(paths, ","); got != "a/x.txt,a/y.txt,b/z.txt" {
		t.Errorf("unexpected bucket order: %s", got)
	}
}

func TestRunMatchesStatSizes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "loose.bin", 11)
	writeFile(t, root, "a/one", 1)
	writeFile(t, root, "a/b/two", 22)
	writeFile(t, root, "a/b/c/three", 333)
	writeFile(t, root, "d/four", 4444)
	writeFile(t, root, "d/e/five", 0)
	writeFile(t, root, "f/g/h/i/six", 66)

	if err := os.MkdirAll(filepath.Join(root, "empty", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	wantBytes, wantCount := statTotal(t, root)

	for _, workers := range []int{1, 2, 16} {
		result, err := Run(context.Background(), Options{Path: root, Workers: workers}, Hooks{})
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}

		if result.TotalBytes != wantBytes {
			t.Errorf("workers=%d: expected %d bytes, got %d", workers, wantBytes, result.TotalBytes)
		}

		var sum int64

		seen := map[string]bool{}

		for _, b := range result.Buckets {
			if seen[b.Path] {
				t.Errorf("workers=%d: duplicate bucket %q", workers, b.Path)
			}

			seen[b.Path] = true

			if len(b.Files) != 1 {
				t.Errorf("workers=%d: expected 1 file under %q, got %d", workers, b.Path, len(b.Files))
			}

			if b.Files[0].Name != filepath.Base(b.Path) {
				t.Errorf("workers=%d: entry %q recorded under %q", workers, b.Files[0].Name, b.Path)
			}

			sum += b.Size()
		}

		if sum != wantBytes || len(seen) != wantCount {
			t.Errorf("workers=%d: buckets hold %d bytes in %d paths, expected %d in %d",
				workers, sum, len(seen), wantBytes, wantCount)
		}
	}
}

func TestRunRootFilesOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x.txt", 100)
	writeFile(t, root, "y.txt", 200)

	result, err := Run(context.Background(), Options{Path: root}, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Tasks != 1 {
		t.Errorf("expected only the root task, got %d", result.Tasks)
	}

	if len(result.Buckets) != 2 || result.TotalBytes != 300 {
		t.Fatalf("expected 2 buckets with 300 bytes, got %d with %d", len(result.Buckets), result.TotalBytes)
	}

	for _, b := range result.Buckets {
		if b.Group() != RootGroup {
			t.Errorf("expected %q in the root group, got %q", b.Path, b.Group())
		}
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	result, err := Run(context.Background(), Options{Path: t.TempDir()}, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalBytes != 0 || len(result.Buckets) != 0 {
		t.Errorf("expected empty result, got %d bytes in %d buckets", result.TotalBytes, len(result.Buckets))
	}
}

func TestRunFilters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/objects/blob", 100)
	writeFile(t, root, "src/main.go", 10)
	writeFile(t, root, "src/debug.log", 20)
	writeFile(t, root, "src/vendor/lib/lib.go", 30)
	writeFile(t, root, "tiny", 1)

	opt := Options{
		Path:     root,
		Excludes: []string{`.*\.git/.*`},
		Ignores:  []string{"**/*.log", "**/vendor"},
		MinSize:  2,
	}

	result, err := Run(context.Background(), opt, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Buckets) != 1 || result.Buckets[0].Path != "src/main.go" {
		t.Fatalf("expected only src/main.go, got %+v", result.Buckets)
	}

	if result.Tasks != 2 {
		t.Errorf("excluded top-level directories must not be scheduled, got %d tasks", result.Tasks)
	}
}

func TestRunInvalidInput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", 1)

	tests := []struct {
		name string
		opt  Options
		want error
	}{
		{name: "not a directory", opt: Options{Path: filepath.Join(root, "file.txt")}, want: ErrNotDirectory},
		{name: "missing path", opt: Options{Path: filepath.Join(root, "missing")}, want: fs.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.opt, Hooks{})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("bad regex", func(t *testing.T) {
		if _, err := Run(context.Background(), Options{Path: root, Excludes: []string{"("}}, Hooks{}); err == nil {
			t.Error("expected error for invalid regex")
		}
	})

	t.Run("bad glob", func(t *testing.T) {
		if _, err := Run(context.Background(), Options{Path: root, Ignores: []string{"[a-"}}, Hooks{}); err == nil {
			t.Error("expected error for invalid glob")
		}
	})
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/x", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, Options{Path: root}, Hooks{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunTaskDoneHook(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a", "b", "c", "d"} {
		writeFile(t, root, dir+"/f", 1)
	}

	var (
		mu    sync.Mutex
		calls []int
		total int
	)

	hooks := Hooks{
		TaskDone: func(done, n int) {
			mu.Lock()
			defer mu.Unlock()

			calls = append(calls, done)
			total = n
		},
	}

	if _, err := Run(context.Background(), Options{Path: root, Workers: 2}, hooks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 5 || len(calls) != 5 {
		t.Fatalf("expected 5 task notifications out of 5, got %d out of %d", len(calls), total)
	}

	seen := map[int]bool{}
	for _, c := range calls {
		seen[c] = true
	}

	for i := 1; i <= 5; i++ {
		if !seen[i] {
			t.Errorf("missing notification for task %d", i)
		}
	}
}

func TestRunSkipsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	root := t.TempDir()
	writeFile(t, root, "a/open/f", 10)
	writeFile(t, root, "a/locked/hidden", 10)
	writeFile(t, root, "b/g", 20)

	locked := filepath.Join(root, "a", "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result, err := Run(context.Background(), Options{Path: root}, Hooks{})
	if err != nil {
		t.Fatalf("expected unreadable directory to be skipped, got %v", err)
	}

	keys := make(map[string]bool)
	for _, b := range result.Buckets {
		keys[b.Path] = true
	}

	if !keys["a/open/f"] || !keys["b/g"] {
		t.Errorf("expected readable files to be recorded, got %v", keys)
	}

	if keys["a/locked/hidden"] {
		t.Error("file below an unreadable directory must not be recorded")
	}

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 skipped error, got %v", result.Errors)
	}

	if got := result.Errors[0]; got.Op != "readdir" || got.Path != "a/locked" {
		t.Errorf("unexpected skipped error: %v", got)
	}

	t.Run("fail fast", func(t *testing.T) {
		_, err := Run(context.Background(), Options{Path: root, FailFast: true}, Hooks{})

		var accessErr *FilesystemAccessError
		if !errors.As(err, &accessErr) {
			t.Fatalf("expected FilesystemAccessError, got %v", err)
		}
	})
}
