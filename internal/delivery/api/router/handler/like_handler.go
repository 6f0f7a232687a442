package handler

import (
	"context"
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

// LikeHandlerParams holds dependencies for LikeHandler, injected by Fx.
type LikeHandlerParams struct {
	fx.In

	LikeUC usecase.LikeUsecase
	Logger *slog.Logger
}

// LikeHandler serves likes on tracks and albums
type LikeHandler struct {
	likeUC usecase.LikeUsecase
	logger *slog.Logger
}

// NewLikeHandler is the constructor for LikeHandler
func NewLikeHandler(params LikeHandlerParams) *LikeHandler {
	return &LikeHandler{
		likeUC: params.LikeUC,
		logger: params.Logger,
	}
}

// LikeRequest identifies the liked item. Unlike reads the same fields from the query string.
type LikeRequest struct {
	ItemType string `json:"item_type" query:"item_type" validate:"required,oneof=track album artist"`
	ItemID   string `json:"item_id" query:"item_id" validate:"required,uuid"`
}

// Like handles liking an item
func (h *LikeHandler) Like(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid like input")
	}

	return h.apply(c, userID, &req, h.likeUC.Like)
}

// Unlike handles removing a like; parameters come from the query string
func (h *LikeHandler) Unlike(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	req := LikeRequest{
		ItemType: c.QueryParam("item_type"),
		ItemID:   c.QueryParam("item_id"),
	}

	return h.apply(c, userID, &req, h.likeUC.Unlike)
}

type likeFunc func(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (*usecase.LikeOutput, error)

func (h *LikeHandler) apply(c echo.Context, userID uuid.UUID, req *LikeRequest, fn likeFunc) error {
	if err := c.Validate(req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid item ID")
	}

	out, err := fn(c.Request().Context(), userID, entity.ItemType(req.ItemType), itemID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"message": out.Message,
		"liked":   out.Liked,
	})
}

// ListLikes handles the caller's likes, optionally filtered by item_type
func (h *LikeHandler) ListLikes(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var itemType *entity.ItemType
	if raw := c.QueryParam("item_type"); raw != "" {
		t := entity.ItemType(raw)
		itemType = &t
	}

	likes, err := h.likeUC.ListLikes(c.Request().Context(), userID, itemType)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]*LikeResponse, 0, len(likes))
	for _, l := range likes {
		out = append(out, &LikeResponse{
			ID:        l.ID,
			ItemType:  l.ItemType.String(),
			ItemID:    l.ItemID,
			CreatedAt: l.CreatedAt,
		})
	}

	return response.Success(c, http.StatusOK, out)
}
