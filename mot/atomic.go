package mot

import (
	"os"
	"path/filepath"
)

// atomicFile is a temporary file that replaces its destination on commit
type atomicFile struct {
	f    *os.File
	dest string
}

// createAtomic creates the destination directory and opens a temporary file
// next to dest
func createAtomic(dest string) (*atomicFile, error) {

	dir := filepath.Dir(dest)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fsError("mkdir", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".partial-*")

	if err != nil {
		return nil, fsError("create", dest, err)
	}

	return &atomicFile{f: f, dest: dest}, nil
}

// commit syncs the temporary file and renames it onto the destination
func (a *atomicFile) commit() error {

	tmp := a.f.Name()

	if err := a.f.Sync(); err != nil {
		a.abort()
		return fsError("sync", tmp, err)
	}

	if err := a.f.Close(); err != nil {
		os.Remove(tmp)
		return fsError("close", tmp, err)
	}

	// CreateTemp uses 0600
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fsError("chmod", tmp, err)
	}

	if err := os.Rename(tmp, a.dest); err != nil {
		os.Remove(tmp)
		return fsError("rename", a.dest, err)
	}

	return nil
}

// abort discards the temporary file
func (a *atomicFile) abort() {
	a.f.Close()
	os.Remove(a.f.Name())
}
