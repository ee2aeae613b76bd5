package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardnew/maillist/pkg"
)

// FileMode is the permission mode of saved files.
const FileMode os.FileMode = 0o600

// File is a [Store] backed by a regular file.
type File struct {
	path string
}

// NewFile returns a store for the file at path. The file need not exist.
func NewFile(path string) *File {
	return &File{path: filepath.Clean(path)}
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

func (f *File) String() string { return f.path }

// Load returns the file's contents. A missing file loads as "".
func (f *File) Load(context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}

		return "", pkg.ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// Save writes text to a temporary file in the same directory and renames it
// over the target, so readers never observe a partial write.
func (f *File) Save(_ context.Context, text string) (err error) {
	dir := filepath.Dir(f.path)

	if err = os.MkdirAll(dir, pkg.DirMode); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.WriteString(text); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	if err = tmp.Chmod(FileMode); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	if err = tmp.Sync(); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	if err = tmp.Close(); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Close is a no-op.
func (*File) Close() error { return nil }
