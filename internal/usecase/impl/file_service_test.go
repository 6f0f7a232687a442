package impl

import (
	"context"
	"io"
	"strings"
	"testing"

	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/infra/storage"
	"pandore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func newTestFileService(t *testing.T) usecase.FileUsecase {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	return NewFileService(FileServiceParams{
		Storage: storage.NewBlobStorage(bucket),
		Config:  newTestConfig(),
		Logger:  newDiscardLogger(),
	})
}

func TestFileService_UploadAndRead(t *testing.T) {
	srv := newTestFileService(t)
	ctx := context.Background()

	out, err := srv.Upload(ctx, usecase.FileKindAudio, "My Song.MP3", "", strings.NewReader("0123456789"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.Name, ".mp3"))
	assert.Equal(t, "/api/files/audio/"+out.Name, out.URL)

	info, err := srv.Stat(ctx, usecase.FileKindAudio, out.Name)
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)

	reader, err := srv.Open(ctx, usecase.FileKindAudio, out.Name, 2, 3)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "234", string(data))
}

func TestFileService_UploadCover(t *testing.T) {
	srv := newTestFileService(t)

	out, err := srv.Upload(context.Background(), usecase.FileKindCover, "../../etc/cover.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.NotContains(t, out.Name, "/")
	assert.Equal(t, "/api/files/covers/"+out.Name, out.URL)

	// Same file is not visible under the other kind.
	_, err = srv.Stat(context.Background(), usecase.FileKindAudio, out.Name)
	assert.ErrorIs(t, err, domainerrors.ErrFileNotFound)
}

func TestFileService_RejectsBadNames(t *testing.T) {
	srv := newTestFileService(t)
	ctx := context.Background()

	for _, name := range []string{"../secret", "a/b.mp3", "", "dots..mp3", "x.tar.gz"} {
		_, err := srv.Stat(ctx, usecase.FileKindAudio, name)
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed, name)
	}

	_, err := srv.Stat(ctx, usecase.FileKind("etc"), "passwd")
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = srv.Open(ctx, usecase.FileKindAudio, "missing.mp3", 0, -1)
	assert.ErrorIs(t, err, domainerrors.ErrFileNotFound)
}
