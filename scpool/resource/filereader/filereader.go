// Package filereader provides a pool factory for read-only handles on
// one data file, so concurrent readers each get their own offset
// without reopening the file per read.
package filereader

import (
	"context"
	"errors"
	"os"

	"github.com/gofrs/flock"

	"github.com/sjy-dv/scpool/scpool/core"
)

const lockSuffix = ".FLOCK"

var ErrLocked = errors.New("filereader: file is exclusively held")

// Factory opens *os.File read handles on Path. A shared advisory lock
// sits next to the file for the factory's lifetime, so a writer taking
// the exclusive lock knows readers are attached. Close releases it.
type Factory struct {
	path string
	lock *flock.Flock
}

var _ core.Factory[*os.File] = &Factory{}

func New(path string) (*Factory, error) {
	lock := flock.New(path + lockSuffix)
	held, err := lock.TryRLock()
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, ErrLocked
	}
	return &Factory{path: path, lock: lock}, nil
}

func (f *Factory) Create(_ context.Context) (*os.File, error) {
	return os.Open(f.path)
}

func (f *Factory) Destroy(file *os.File) error {
	return file.Close()
}

func (f *Factory) Validate(_ context.Context, file *os.File) bool {
	_, err := file.Stat()
	return err == nil
}

// Close releases the shared lock. Call it after the pool using this
// factory has been closed.
func (f *Factory) Close() error {
	return f.lock.Unlock()
}
