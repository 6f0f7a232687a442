package handler

import (
	"log/slog"
	"net/http"
	"time"

	"pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/response"
	"pandore/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AlbumHandlerParams holds dependencies for AlbumHandler, injected by Fx.
type AlbumHandlerParams struct {
	fx.In

	AlbumUC usecase.AlbumUsecase
	Logger  *slog.Logger
}

// AlbumHandler serves the album catalog
type AlbumHandler struct {
	albumUC usecase.AlbumUsecase
	logger  *slog.Logger
}

// NewAlbumHandler is the constructor for AlbumHandler
func NewAlbumHandler(params AlbumHandlerParams) *AlbumHandler {
	return &AlbumHandler{
		albumUC: params.AlbumUC,
		logger:  params.Logger,
	}
}

// CreateAlbumRequest represents the request body for a new album
type CreateAlbumRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Price       int64      `json:"price" validate:"min=0"`
	Genre       string     `json:"genre" validate:"max=50"`
	Description string     `json:"description" validate:"max=2000"`
	CoverURL    string     `json:"cover_url"`
	ReleaseDate *time.Time `json:"release_date"`
}

// UpdateAlbumRequest is a partial update; absent fields stay unchanged
type UpdateAlbumRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Price       *int64     `json:"price" validate:"omitempty,min=0"`
	Genre       *string    `json:"genre" validate:"omitempty,max=50"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	CoverURL    *string    `json:"cover_url"`
	ReleaseDate *time.Time `json:"release_date"`
}

// CreateAlbum handles album creation by an artist
func (h *AlbumHandler) CreateAlbum(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req CreateAlbumRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid album input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	album, err := h.albumUC.CreateAlbum(c.Request().Context(), user, &usecase.CreateAlbumInput{
		Title:       req.Title,
		Price:       req.Price,
		Genre:       req.Genre,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		ReleaseDate: req.ReleaseDate,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Created(c, toAlbumResponse(album))
}

// ListAlbums handles the public listing
func (h *AlbumHandler) ListAlbums(c echo.Context) error {
	albums, err := h.albumUC.ListAlbums(c.Request().Context(), &usecase.ListInput{
		Limit: queryInt(c, "limit", 0),
		Skip:  queryInt(c, "skip", 0),
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toAlbumResponses(albums))
}

// GetAlbum handles retrieving one album with its track ids
func (h *AlbumHandler) GetAlbum(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid album ID")
	}

	album, err := h.albumUC.GetAlbum(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toAlbumResponse(album))
}

// UpdateAlbum handles a partial update by the owner
func (h *AlbumHandler) UpdateAlbum(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid album ID")
	}

	var req UpdateAlbumRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid album input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	album, err := h.albumUC.UpdateAlbum(c.Request().Context(), userID, id, &usecase.UpdateAlbumInput{
		Title:       req.Title,
		Price:       req.Price,
		Genre:       req.Genre,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		ReleaseDate: req.ReleaseDate,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toAlbumResponse(album))
}

// DeleteAlbum handles deletion by the owner
func (h *AlbumHandler) DeleteAlbum(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid album ID")
	}

	if err := h.albumUC.DeleteAlbum(c.Request().Context(), userID, id); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Album deleted"})
}

// ShareQR renders a share QR code for the album
func (h *AlbumHandler) ShareQR(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid album ID")
	}

	png, err := h.albumUC.ShareQR(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.PNG(c, png)
}
