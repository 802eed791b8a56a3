package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/storage"
)

// Backend stores each key as <dir>/<key>.json. Writes go to a temporary file
// that is renamed over the target so a crash never leaves a partial snapshot.
type Backend struct {
	dir string
}

func New(dir string) *Backend {
	return &Backend{dir: dir}
}

func (b *Backend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.Newf("invalid storage key %q", key)
	}
	return filepath.Join(b.dir, key+".json"), nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(storage.ErrNotFound, "%s", path)
		}
		return nil, errors.Wrap(err, "failed to read storage file")
	}
	return data, nil
}

func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(b.dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}

	tmp, err := os.CreateTemp(b.dir, "."+key+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write storage file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync storage file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close storage file")
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return errors.Wrap(err, "failed to set storage file permissions")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "failed to replace storage file")
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete storage file")
	}
	return nil
}

// Ping creates the data directory if needed and checks it is a directory.
func (b *Backend) Ping(_ context.Context) error {
	if err := os.MkdirAll(b.dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}
	info, err := os.Stat(b.dir)
	if err != nil {
		return errors.Wrap(err, "failed to stat data directory")
	}
	if !info.IsDir() {
		return errors.Newf("data path %s is not a directory", b.dir)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}

func (b *Backend) Location() string {
	return b.dir
}
