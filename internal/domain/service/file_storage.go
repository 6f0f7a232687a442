package service

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrObjectNotFound is returned when a storage key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// FileStorage is a key to bytes store with range reads.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// OpenRange reads length bytes starting at offset. A negative length reads to the end.
	OpenRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)
}
