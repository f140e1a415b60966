package store

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	pkgio "github.com/matzehuels/kintree/pkg/io"
)

// File serves the families of a snapshot file. The snapshot is read on open
// and read again whenever its modification time changes.
type File struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	mem     *Memory
}

// OpenFile reads the snapshot at path. The format follows the extension
// (.json or .toml).
func OpenFile(path string) (*File, error) {
	if err := errors.ValidateSnapshotPath(path); err != nil {
		return nil, err
	}
	f := &File{path: path}
	if err := f.reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the snapshot path.
func (f *File) Path() string { return f.path }

func (f *File) reload() error {
	info, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s not found", f.path)
		}
		return err
	}
	if f.mem != nil && info.ModTime().Equal(f.modTime) {
		return nil
	}
	snap, err := pkgio.Import(f.path)
	if err != nil {
		return err
	}
	f.mem = NewMemory(snap.Families...)
	f.modTime = info.ModTime()
	return nil
}

func (f *File) current() (*Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reload(); err != nil {
		return nil, err
	}
	return f.mem, nil
}

// Family returns the family with the given id.
func (f *File) Family(ctx context.Context, id string) (*family.Family, error) {
	mem, err := f.current()
	if err != nil {
		return nil, err
	}
	return mem.Family(ctx, id)
}

// Families returns the families in snapshot order.
func (f *File) Families(ctx context.Context) ([]*family.Family, error) {
	mem, err := f.current()
	if err != nil {
		return nil, err
	}
	return mem.Families(ctx)
}

// Close does nothing.
func (f *File) Close() error { return nil }

var _ Store = (*File)(nil)
