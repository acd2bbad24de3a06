package dirmap

import (
	"errors"
	"fmt"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// FilesystemAccessError reports a file or directory that could not be read
// during a scan. Path is relative to the scan root.
type FilesystemAccessError struct {
	// Op is the failed operation ("stat", "readdir", "walk").
	Op string
	// Path is the slash path relative to the scan root.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *FilesystemAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemAccessError) Unwrap() error {
	return e.Err
}

// MarshalText renders the error as its message, so results encode cleanly to JSON.
func (e *FilesystemAccessError) MarshalText() ([]byte, error) {
	return []byte(e.Error()), nil
}
