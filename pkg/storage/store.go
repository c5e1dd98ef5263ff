package storage

import (
	"io"
	"strings"

	"github.com/cresszm/cress/pkg/errors"
)

// Store abstracts where uploaded objects (APK builds, attachments) live.
type Store interface {
	Read(key string) (io.ReadCloser, int64, error)
	Write(key string, r io.Reader, size int64) error
	Delete(key string) error
	Exists(key string) (bool, error)
}

// NewStore builds a store for the configured driver. path is the local base
// directory; the minio driver configures itself from the environment.
func NewStore(driver, path string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", "local":
		return NewLocalStore(path), nil
	case "minio":
		return NewMinioStore(), nil
	default:
		return nil, errors.Errorf("unsupported storage driver: %s", driver)
	}
}
