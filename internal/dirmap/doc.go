// Package dirmap scans a directory tree and aggregates file sizes by relative path.
//
// The scan root is split into its immediate subdirectories, each walked by its
// own task (fastwalk inside a task, a bounded errgroup across tasks), plus one
// task for the loose files directly under the root. Task results are merged
// after every task has finished and sorted by top-level group.
package dirmap
