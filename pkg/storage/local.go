package storage

import (
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps objects on disk under a base directory. Keys are
// slash-separated relative paths.
type LocalStore struct {
	Base string
}

func NewLocalStore(base string) *LocalStore {
	if base == "" {
		base = "storage"
	}
	return &LocalStore{Base: base}
}

func (l *LocalStore) path(key string) string {
	return filepath.Join(l.Base, filepath.FromSlash(key))
}

func (l *LocalStore) Read(key string) (io.ReadCloser, int64, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

func (l *LocalStore) Write(key string, r io.Reader, size int64) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (l *LocalStore) Delete(key string) error {
	err := os.Remove(l.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *LocalStore) Exists(key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
