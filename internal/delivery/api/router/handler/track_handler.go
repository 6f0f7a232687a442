package handler

import (
	"log/slog"
	"net/http"

	"pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/response"
	"pandore/internal/domain/entity"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// TrackHandlerParams holds dependencies for TrackHandler, injected by Fx.
type TrackHandlerParams struct {
	fx.In

	TrackUC usecase.TrackUsecase
	Logger  *slog.Logger
}

// TrackHandler serves the track catalog
type TrackHandler struct {
	trackUC usecase.TrackUsecase
	logger  *slog.Logger
}

// NewTrackHandler is the constructor for TrackHandler
func NewTrackHandler(params TrackHandlerParams) *TrackHandler {
	return &TrackHandler{
		trackUC: params.TrackUC,
		logger:  params.Logger,
	}
}

// CreateTrackRequest represents the request body for a new track
type CreateTrackRequest struct {
	Title            string            `json:"title" validate:"required,max=200"`
	Price            int64             `json:"price" validate:"min=0"`
	Genre            string            `json:"genre" validate:"max=50"`
	Description      string            `json:"description" validate:"max=2000"`
	Duration         int               `json:"duration" validate:"min=0"`
	PreviewStartTime int               `json:"preview_start_time" validate:"min=0"`
	FileURL          string            `json:"file_url"`
	PreviewURL       string            `json:"preview_url"`
	CoverURL         string            `json:"cover_url"`
	AlbumID          *uuid.UUID        `json:"album_id"`
	Status           string            `json:"status" validate:"omitempty,oneof=draft published"`
	Mastering        *entity.Mastering `json:"mastering"`
	Splits           []entity.Split    `json:"splits"`
}

// UpdateTrackRequest is a partial update; absent fields stay unchanged
type UpdateTrackRequest struct {
	Title            *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Price            *int64            `json:"price" validate:"omitempty,min=0"`
	Genre            *string           `json:"genre" validate:"omitempty,max=50"`
	Description      *string           `json:"description" validate:"omitempty,max=2000"`
	Duration         *int              `json:"duration" validate:"omitempty,min=0"`
	PreviewStartTime *int              `json:"preview_start_time" validate:"omitempty,min=0"`
	FileURL          *string           `json:"file_url"`
	PreviewURL       *string           `json:"preview_url"`
	CoverURL         *string           `json:"cover_url"`
	AlbumID          *uuid.UUID        `json:"album_id"`
	Status           *string           `json:"status" validate:"omitempty,oneof=draft published"`
	Mastering        *entity.Mastering `json:"mastering"`
	Splits           []entity.Split    `json:"splits"`
}

// CreateTrack handles track creation by an artist
func (h *TrackHandler) CreateTrack(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req CreateTrackRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid track input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	track, err := h.trackUC.CreateTrack(c.Request().Context(), user, &usecase.CreateTrackInput{
		Title:            req.Title,
		Price:            req.Price,
		Genre:            req.Genre,
		Description:      req.Description,
		Duration:         req.Duration,
		PreviewStartTime: req.PreviewStartTime,
		FileURL:          req.FileURL,
		PreviewURL:       req.PreviewURL,
		CoverURL:         req.CoverURL,
		AlbumID:          req.AlbumID,
		Status:           entity.TrackStatus(req.Status),
		Mastering:        req.Mastering,
		Splits:           req.Splits,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Created(c, toTrackResponse(track))
}

// ListTracks handles the public listing with limit, skip and genre
func (h *TrackHandler) ListTracks(c echo.Context) error {
	tracks, err := h.trackUC.ListTracks(c.Request().Context(), &usecase.ListInput{
		Genre: c.QueryParam("genre"),
		Limit: queryInt(c, "limit", 0),
		Skip:  queryInt(c, "skip", 0),
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toTrackResponses(tracks))
}

// GetTrack handles retrieving one track
func (h *TrackHandler) GetTrack(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid track ID")
	}

	track, err := h.trackUC.GetTrack(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toTrackResponse(track))
}

// UpdateTrack handles a partial update by the owner
func (h *TrackHandler) UpdateTrack(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid track ID")
	}

	var req UpdateTrackRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid track input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateTrackInput{
		Title:            req.Title,
		Price:            req.Price,
		Genre:            req.Genre,
		Description:      req.Description,
		Duration:         req.Duration,
		PreviewStartTime: req.PreviewStartTime,
		FileURL:          req.FileURL,
		PreviewURL:       req.PreviewURL,
		CoverURL:         req.CoverURL,
		AlbumID:          req.AlbumID,
		Mastering:        req.Mastering,
		Splits:           req.Splits,
	}
	if req.Status != nil {
		status := entity.TrackStatus(*req.Status)
		input.Status = &status
	}

	track, err := h.trackUC.UpdateTrack(c.Request().Context(), userID, id, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toTrackResponse(track))
}

// DeleteTrack handles deletion by the owner
func (h *TrackHandler) DeleteTrack(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid track ID")
	}

	if err := h.trackUC.DeleteTrack(c.Request().Context(), userID, id); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Track deleted"})
}

// ShareQR renders a share QR code for the track
func (h *TrackHandler) ShareQR(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid track ID")
	}

	png, err := h.trackUC.ShareQR(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.PNG(c, png)
}
