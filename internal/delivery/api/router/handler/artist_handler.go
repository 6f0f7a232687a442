package handler

import (
	"log/slog"
	"net/http"

	"pandore/internal/delivery/api/response"
	"pandore/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ArtistHandlerParams holds dependencies for ArtistHandler, injected by Fx.
type ArtistHandlerParams struct {
	fx.In

	ArtistUC usecase.ArtistUsecase
	Logger   *slog.Logger
}

// ArtistHandler serves public artist profiles
type ArtistHandler struct {
	artistUC usecase.ArtistUsecase
	logger   *slog.Logger
}

// NewArtistHandler is the constructor for ArtistHandler
func NewArtistHandler(params ArtistHandlerParams) *ArtistHandler {
	return &ArtistHandler{
		artistUC: params.ArtistUC,
		logger:   params.Logger,
	}
}

// ListArtists handles the artist directory
func (h *ArtistHandler) ListArtists(c echo.Context) error {
	artists, err := h.artistUC.ListArtists(c.Request().Context(), queryInt(c, "limit", 0))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]*ArtistResponse, 0, len(artists))
	for _, a := range artists {
		out = append(out, toArtistResponse(a))
	}

	return response.Success(c, http.StatusOK, out)
}

// GetArtist handles one artist with their catalog
func (h *ArtistHandler) GetArtist(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid artist ID")
	}

	detail, err := h.artistUC.GetArtist(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"artist": toArtistResponse(detail.Artist),
		"tracks": toTrackResponses(detail.Tracks),
		"albums": toAlbumResponses(detail.Albums),
	})
}
