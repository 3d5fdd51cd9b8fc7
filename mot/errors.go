package mot

import "fmt"

// FileSystemError is returned when an output directory or file can not be
// created or written
type FileSystemError struct {
	// Op is the operation that failed, eg: "mkdir", "create", "write"
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

func fsError(op, path string, err error) error {
	return &FileSystemError{Op: op, Path: path, Err: err}
}
