// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"strings"

	"pandore/config"
	"pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/router/handler"
	"pandore/internal/domain/entity"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	TrackHandler    *handler.TrackHandler
	AlbumHandler    *handler.AlbumHandler
	ArtistHandler   *handler.ArtistHandler
	PlaylistHandler *handler.PlaylistHandler
	LikeHandler     *handler.LikeHandler
	PurchaseHandler *handler.PurchaseHandler
	FileHandler     *handler.FileHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Config          *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler     *handler.AuthHandler
	trackHandler    *handler.TrackHandler
	albumHandler    *handler.AlbumHandler
	artistHandler   *handler.ArtistHandler
	playlistHandler *handler.PlaylistHandler
	likeHandler     *handler.LikeHandler
	purchaseHandler *handler.PurchaseHandler
	fileHandler     *handler.FileHandler
	authMiddleware  *middleware.AuthMiddleware
	loginLimiter    *middleware.RateLimiter
	config          *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	var limit config.RateLimitConfig
	if params.Config.Auth != nil {
		limit = params.Config.Auth.LoginRateLimit
	}

	return &router{
		authHandler:     params.AuthHandler,
		trackHandler:    params.TrackHandler,
		albumHandler:    params.AlbumHandler,
		artistHandler:   params.ArtistHandler,
		playlistHandler: params.PlaylistHandler,
		likeHandler:     params.LikeHandler,
		purchaseHandler: params.PurchaseHandler,
		fileHandler:     params.FileHandler,
		authMiddleware:  params.AuthMiddleware,
		loginLimiter:    middleware.NewRateLimiter(limit),
		config:          params.Config,
	}
}

// PathPrefix is the mount point of every route.
func PathPrefix(cfg *config.Config) string {
	return strings.TrimRight(cfg.HTTP.PathPrefix, "/")
}

// IsUploadPath reports whether the request targets an upload route, which has its own body limit.
func IsUploadPath(cfg *config.Config, path string) bool {
	return strings.HasPrefix(path, PathPrefix(cfg)+"/upload/")
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	api := e.Group(PathPrefix(r.config))
	authenticated := r.authMiddleware.Authenticate
	artistOnly := r.authMiddleware.RequireRole(entity.RoleArtist)

	// Health check endpoint
	api.GET("/health", handler.HealthCheck)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register, r.loginLimiter.Limit)
		authGroup.POST("/login", r.authHandler.Login, r.loginLimiter.Limit)
		authGroup.POST("/google/callback", r.authHandler.GoogleCallback, r.loginLimiter.Limit)
		authGroup.GET("/me", r.authHandler.Me, authenticated)
		authGroup.POST("/logout", r.authHandler.Logout, authenticated)
		authGroup.PUT("/role", r.authHandler.UpdateRole, authenticated)
	}

	uploadGroup := api.Group("/upload")
	uploadGroup.Use(echomiddleware.BodyLimit(r.config.Storage.MaxUploadSize))
	uploadGroup.Use(authenticated, artistOnly)
	{
		uploadGroup.POST("/audio", r.fileHandler.UploadAudio)
		uploadGroup.POST("/cover", r.fileHandler.UploadCover)
	}

	filesGroup := api.Group("/files")
	{
		filesGroup.GET("/audio/:name", r.fileHandler.ServeAudio)
		filesGroup.GET("/covers/:name", r.fileHandler.ServeCover)
	}

	tracksGroup := api.Group("/tracks")
	{
		tracksGroup.POST("", r.trackHandler.CreateTrack, authenticated, artistOnly)
		tracksGroup.GET("", r.trackHandler.ListTracks)
		tracksGroup.GET("/:id", r.trackHandler.GetTrack)
		tracksGroup.PUT("/:id", r.trackHandler.UpdateTrack, authenticated)
		tracksGroup.DELETE("/:id", r.trackHandler.DeleteTrack, authenticated)
		tracksGroup.GET("/:id/qr", r.trackHandler.ShareQR)
	}

	albumsGroup := api.Group("/albums")
	{
		albumsGroup.POST("", r.albumHandler.CreateAlbum, authenticated, artistOnly)
		albumsGroup.GET("", r.albumHandler.ListAlbums)
		albumsGroup.GET("/:id", r.albumHandler.GetAlbum)
		albumsGroup.PUT("/:id", r.albumHandler.UpdateAlbum, authenticated)
		albumsGroup.DELETE("/:id", r.albumHandler.DeleteAlbum, authenticated)
		albumsGroup.GET("/:id/qr", r.albumHandler.ShareQR)
	}

	artistsGroup := api.Group("/artists")
	{
		artistsGroup.GET("", r.artistHandler.ListArtists)
		artistsGroup.GET("/:id", r.artistHandler.GetArtist)
	}

	playlistsGroup := api.Group("/playlists")
	playlistsGroup.Use(authenticated)
	{
		playlistsGroup.POST("", r.playlistHandler.CreatePlaylist)
		playlistsGroup.GET("", r.playlistHandler.ListPlaylists)
		playlistsGroup.GET("/:id", r.playlistHandler.GetPlaylist)
		playlistsGroup.PUT("/:id/tracks", r.playlistHandler.ReplaceTracks)
		playlistsGroup.DELETE("/:id", r.playlistHandler.DeletePlaylist)
	}

	likesGroup := api.Group("/likes")
	likesGroup.Use(authenticated)
	{
		likesGroup.POST("", r.likeHandler.Like)
		likesGroup.DELETE("", r.likeHandler.Unlike)
		likesGroup.GET("", r.likeHandler.ListLikes)
	}

	purchasesGroup := api.Group("/purchases")
	purchasesGroup.Use(authenticated)
	{
		purchasesGroup.POST("/checkout", r.purchaseHandler.Checkout)
		purchasesGroup.GET("/status/:session_id", r.purchaseHandler.Status)
		purchasesGroup.GET("/library", r.purchaseHandler.Library)
	}

	// Provider callbacks authenticate by signature, not by session
	api.POST("/webhook/stripe", r.purchaseHandler.StripeWebhook)
}
