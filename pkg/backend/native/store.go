package native

import (
	"io/fs"
	"os"
	"path/filepath"

	"emperror.dev/errors"
)

// BlobStore is the flat key/value surface a container is stored on. Keys
// are slash separated and relative to the container root. Put replaces
// atomically: readers never see a partial blob.
type BlobStore interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
	Exists(key string) (bool, error)
	DeleteAll() error
}

// StoreOpener produces the blob store backing one named container.
type StoreOpener func(container string) (BlobStore, error)

// dirStore keeps blobs as plain files under a directory.
type dirStore struct {
	dir string
}

func openDirStore(container string) (BlobStore, error) {
	if container == "" {
		return nil, errors.New("empty container path")
	}
	return &dirStore{dir: container}, nil
}

func (ds *dirStore) path(key string) string {
	return filepath.Join(ds.dir, filepath.FromSlash(key))
}

func (ds *dirStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(ds.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "blob '%s'", key)
		}
		return nil, errors.Wrapf(err, "cannot read blob '%s'", key)
	}
	return data, nil
}

func (ds *dirStore) Put(key string, data []byte) error {
	target := ds.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "cannot create directory for blob '%s'", key)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "cannot write blob '%s'", key)
	}
	if err := os.Rename(tmp, target); err != nil {
		return errors.Wrapf(err, "cannot rename blob '%s' into place", key)
	}
	return nil
}

func (ds *dirStore) Delete(key string) error {
	if err := os.Remove(ds.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "cannot delete blob '%s'", key)
	}
	return nil
}

func (ds *dirStore) Exists(key string) (bool, error) {
	if _, err := os.Stat(ds.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "cannot stat blob '%s'", key)
	}
	return true, nil
}

func (ds *dirStore) DeleteAll() error {
	if err := os.RemoveAll(ds.dir); err != nil {
		return errors.Wrapf(err, "cannot delete container directory '%s'", ds.dir)
	}
	return nil
}
