package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"pandore/internal/delivery/api/response"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	formFieldFile      = "file"
	defaultContentType = "application/octet-stream"
)

// FileHandlerParams holds dependencies for FileHandler, injected by Fx.
type FileHandlerParams struct {
	fx.In

	FileUC usecase.FileUsecase
	Logger *slog.Logger
}

// FileHandler accepts uploads from artists and serves stored media
type FileHandler struct {
	fileUC usecase.FileUsecase
	logger *slog.Logger
}

// NewFileHandler is the constructor for FileHandler
func NewFileHandler(params FileHandlerParams) *FileHandler {
	return &FileHandler{
		fileUC: params.FileUC,
		logger: params.Logger,
	}
}

// UploadAudio stores an audio file and returns its public URL as file_url
func (h *FileHandler) UploadAudio(c echo.Context) error {
	return h.upload(c, usecase.FileKindAudio, "file_url")
}

// UploadCover stores a cover image and returns its public URL as cover_url
func (h *FileHandler) UploadCover(c echo.Context) error {
	return h.upload(c, usecase.FileKindCover, "cover_url")
}

func (h *FileHandler) upload(c echo.Context, kind usecase.FileKind, urlField string) error {
	fileHeader, err := c.FormFile(formFieldFile)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Multipart field 'file' is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Unable to read uploaded file")
	}
	defer src.Close()

	out, err := h.fileUC.Upload(c.Request().Context(), kind, fileHeader.Filename, fileHeader.Header.Get(echo.HeaderContentType), src)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Created(c, map[string]string{urlField: out.URL})
}

// ServeAudio streams an audio file, honoring a single byte range
func (h *FileHandler) ServeAudio(c echo.Context) error {
	return h.serve(c, usecase.FileKindAudio, true)
}

// ServeCover returns a whole cover image
func (h *FileHandler) ServeCover(c echo.Context) error {
	return h.serve(c, usecase.FileKindCover, false)
}

func (h *FileHandler) serve(c echo.Context, kind usecase.FileKind, ranged bool) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	info, err := h.fileUC.Stat(ctx, kind, name)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	header := c.Response().Header()
	status := http.StatusOK
	offset, length := int64(0), info.Size

	if ranged {
		header.Set("Accept-Ranges", "bytes")

		r, ok, err := parseByteRange(c.Request().Header.Get("Range"), info.Size)
		if errors.Is(err, errRangeNotSatisfiable) {
			header.Set("Content-Range", "bytes */"+strconv.FormatInt(info.Size, 10))

			return response.HandleAppError(c, domainerrors.ErrRangeNotSatisfiable)
		}
		if ok {
			status = http.StatusPartialContent
			offset, length = r.start, r.length()
			header.Set("Content-Range", r.contentRange(info.Size))
		}
	}

	body, err := h.fileUC.Open(ctx, kind, name, offset, length)
	if err != nil {
		return response.HandleAppError(c, err)
	}
	defer body.Close()

	header.Set(echo.HeaderContentLength, strconv.FormatInt(length, 10))

	return c.Stream(status, contentType, body)
}
