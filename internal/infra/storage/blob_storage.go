// Package storage keeps uploaded audio and cover files in a gocloud.dev bucket.
package storage

import (
	"context"
	"io"
	"log/slog"

	"pandore/config"
	"pandore/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// BucketParams holds dependencies for opening the bucket
type BucketParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewBucket opens the configured bucket and closes it on shutdown.
func NewBucket(params BucketParams) (*blob.Bucket, error) {
	bucketURL := params.Config.Storage.BucketURL

	bucket, err := blob.OpenBucket(context.Background(), bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing storage bucket")

			return bucket.Close()
		},
	})

	params.Logger.Info("Storage bucket opened", slog.String("url", bucketURL))

	return bucket, nil
}

type blobStorage struct {
	bucket *blob.Bucket
}

// NewBlobStorage adapts a bucket to the FileStorage interface.
func NewBlobStorage(bucket *blob.Bucket) service.FileStorage {
	return &blobStorage{bucket: bucket}
}

func (s *blobStorage) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrapf(err, "failed to open writer for %s", key)
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()

		return errors.Wrapf(err, "failed to write %s", key)
	}

	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "failed to commit %s", key)
	}

	return nil
}

func (s *blobStorage) Stat(ctx context.Context, key string) (*service.ObjectInfo, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		return nil, translateError(err, key)
	}

	return &service.ObjectInfo{Size: attrs.Size, ContentType: attrs.ContentType}, nil
}

func (s *blobStorage) OpenRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	reader, err := s.bucket.NewRangeReader(ctx, key, offset, length, nil)
	if err != nil {
		return nil, translateError(err, key)
	}

	return reader, nil
}

func translateError(err error, key string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return errors.WithStack(service.ErrObjectNotFound)
	}

	return errors.Wrapf(err, "storage operation on %s failed", key)
}
