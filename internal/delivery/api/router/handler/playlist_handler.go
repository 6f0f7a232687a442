package handler

import (
	"log/slog"
	"net/http"

	"pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/response"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// PlaylistHandlerParams holds dependencies for PlaylistHandler, injected by Fx.
type PlaylistHandlerParams struct {
	fx.In

	PlaylistUC usecase.PlaylistUsecase
	Logger     *slog.Logger
}

// PlaylistHandler serves the caller's playlists
type PlaylistHandler struct {
	playlistUC usecase.PlaylistUsecase
	logger     *slog.Logger
}

// NewPlaylistHandler is the constructor for PlaylistHandler
func NewPlaylistHandler(params PlaylistHandlerParams) *PlaylistHandler {
	return &PlaylistHandler{
		playlistUC: params.PlaylistUC,
		logger:     params.Logger,
	}
}

// CreatePlaylistRequest represents the request body for a new playlist
type CreatePlaylistRequest struct {
	Name        string      `json:"name" validate:"required,max=100"`
	Description string      `json:"description" validate:"max=1000"`
	IsPublic    bool        `json:"is_public"`
	TrackIDs    []uuid.UUID `json:"track_ids"`
}

// ReplaceTracksRequest is the new ordered track list; duplicates are kept
type ReplaceTracksRequest struct {
	TrackIDs []uuid.UUID `json:"track_ids"`
}

// CreatePlaylist handles playlist creation
func (h *PlaylistHandler) CreatePlaylist(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req CreatePlaylistRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid playlist input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	playlist, err := h.playlistUC.CreatePlaylist(c.Request().Context(), userID, &usecase.CreatePlaylistInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		TrackIDs:    req.TrackIDs,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Created(c, toPlaylistResponse(playlist))
}

// ListPlaylists handles the caller's playlists
func (h *PlaylistHandler) ListPlaylists(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	playlists, err := h.playlistUC.ListPlaylists(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]*PlaylistResponse, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, toPlaylistResponse(p))
	}

	return response.Success(c, http.StatusOK, out)
}

// GetPlaylist handles retrieving one of the caller's playlists
func (h *PlaylistHandler) GetPlaylist(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid playlist ID")
	}

	playlist, err := h.playlistUC.GetPlaylist(c.Request().Context(), userID, id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toPlaylistResponse(playlist))
}

// ReplaceTracks handles replacing the ordered track list
func (h *PlaylistHandler) ReplaceTracks(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid playlist ID")
	}

	var req ReplaceTracksRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid track list")
	}

	playlist, err := h.playlistUC.ReplaceTracks(c.Request().Context(), userID, id, req.TrackIDs)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toPlaylistResponse(playlist))
}

// DeletePlaylist handles deletion by the owner
func (h *PlaylistHandler) DeletePlaylist(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid playlist ID")
	}

	if err := h.playlistUC.DeletePlaylist(c.Request().Context(), userID, id); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Playlist deleted"})
}
