package impl

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"path"
	"regexp"
	"strings"

	"pandore/config"
	deliverycontext "pandore/internal/delivery/context"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/service"
	"pandore/internal/usecase"
	"pandore/internal/util"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var fileNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9]+)?$`)

// extensionPattern limits what survives from the uploaded name.
var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

type fileService struct {
	storage    service.FileStorage
	pathPrefix string
	logger     *slog.Logger
}

// FileServiceParams holds dependencies for FileService, injected by Fx.
type FileServiceParams struct {
	fx.In

	Storage service.FileStorage
	Config  *config.Config
	Logger  *slog.Logger
}

// NewFileService is the constructor for fileService.
func NewFileService(params FileServiceParams) usecase.FileUsecase {
	prefix := "/api"
	if params.Config != nil && params.Config.HTTP.PathPrefix != "" {
		prefix = strings.TrimRight(params.Config.HTTP.PathPrefix, "/")
	}

	return &fileService{
		storage:    params.Storage,
		pathPrefix: prefix,
		logger:     params.Logger,
	}
}

func (srv *fileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Upload stores the content under a fresh random name that keeps the original extension.
func (srv *fileService) Upload(ctx context.Context, kind usecase.FileKind, originalName, contentType string, content io.Reader) (*usecase.UploadOutput, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(originalName))
	if !extensionPattern.MatchString(ext) {
		ext = ""
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}
	name := id + ext

	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			contentType = byExt
		}
	}

	counter := &countingReader{r: content}
	if err := srv.storage.Put(ctx, objectKey(kind, name), contentType, counter); err != nil {
		srv.log(ctx).Error("Failed to store upload", slog.String("kind", string(kind)), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}

	srv.log(ctx).Info("File uploaded",
		slog.String("kind", string(kind)),
		slog.String("name", name),
		slog.String("size", util.FormatBytes(counter.n)),
	)

	return &usecase.UploadOutput{
		Name: name,
		URL:  srv.pathPrefix + "/files/" + string(kind) + "/" + name,
	}, nil
}

func (srv *fileService) Stat(ctx context.Context, kind usecase.FileKind, name string) (*service.ObjectInfo, error) {
	if err := validateFileRef(kind, name); err != nil {
		return nil, err
	}

	info, err := srv.storage.Stat(ctx, objectKey(kind, name))
	if err != nil {
		return nil, mapStorageError(err)
	}

	return info, nil
}

func (srv *fileService) Open(ctx context.Context, kind usecase.FileKind, name string, offset, length int64) (io.ReadCloser, error) {
	if err := validateFileRef(kind, name); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, domainerrors.ErrRangeNotSatisfiable
	}

	reader, err := srv.storage.OpenRange(ctx, objectKey(kind, name), offset, length)
	if err != nil {
		return nil, mapStorageError(err)
	}

	return reader, nil
}

func validateKind(kind usecase.FileKind) error {
	if kind != usecase.FileKindAudio && kind != usecase.FileKindCover {
		return domainerrors.ErrValidationFailed.WrapMessage("unknown file kind")
	}

	return nil
}

func validateFileRef(kind usecase.FileKind, name string) error {
	if err := validateKind(kind); err != nil {
		return err
	}
	if !fileNamePattern.MatchString(name) {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid file name")
	}

	return nil
}

func objectKey(kind usecase.FileKind, name string) string {
	return string(kind) + "/" + name
}

func mapStorageError(err error) error {
	if errors.Is(err, service.ErrObjectNotFound) {
		return domainerrors.ErrFileNotFound
	}

	return errors.Wrap(domainerrors.ErrInternalError, err.Error())
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)

	return n, err
}
