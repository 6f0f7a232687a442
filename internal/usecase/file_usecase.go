package usecase

import (
	"context"
	"io"

	"pandore/internal/domain/service"
)

// FileKind is a class of uploaded file.
type FileKind string

const (
	FileKindAudio FileKind = "audio"
	FileKindCover FileKind = "covers"
)

// UploadOutput names the stored file and the public URL serving it.
type UploadOutput struct {
	Name string
	URL  string
}

// FileUsecase stores and serves uploaded media.
type FileUsecase interface {
	Upload(ctx context.Context, kind FileKind, originalName, contentType string, content io.Reader) (*UploadOutput, error)
	Stat(ctx context.Context, kind FileKind, name string) (*service.ObjectInfo, error)
	// Open reads length bytes from offset; a negative length reads to the end.
	Open(ctx context.Context, kind FileKind, name string, offset, length int64) (io.ReadCloser, error)
}
