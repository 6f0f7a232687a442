package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pandore/config"
	apimiddleware "pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/router"
	"pandore/internal/delivery/api/router/handler"
	"pandore/internal/domain/entity"
	"pandore/internal/domain/service"
	"pandore/internal/infra/auth"
	"pandore/internal/infra/persistence/postgres"
	"pandore/internal/infra/qrcode"
	"pandore/internal/infra/storage"
	"pandore/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGateway plays the payment provider: sessions stay unpaid until pay is called.
type fakeGateway struct {
	mu       sync.Mutex
	next     int
	sessions map[string]*service.CheckoutStatus
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: make(map[string]*service.CheckoutStatus)}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req *service.CheckoutRequest) (*service.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	id := fmt.Sprintf("cs_test_%d", g.next)
	g.sessions[id] = &service.CheckoutStatus{
		SessionID:     id,
		Status:        "open",
		PaymentStatus: entity.PaymentStatusUnpaid,
		AmountTotal:   req.Amount,
		Currency:      req.Currency,
		Metadata:      req.Metadata,
	}

	return &service.CheckoutSession{SessionID: id, URL: "https://checkout.test/" + id}, nil
}

func (g *fakeGateway) GetCheckoutStatus(_ context.Context, sessionID string) (*service.CheckoutStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	snapshot := *s

	return &snapshot, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*service.WebhookEvent, error) {
	if signature != "t=1,v1=valid" {
		return nil, service.ErrInvalidWebhookSignature
	}

	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, service.ErrInvalidWebhookSignature
	}

	status, err := g.GetCheckoutStatus(context.Background(), body.SessionID)
	if err != nil {
		return nil, err
	}

	return &service.WebhookEvent{ID: "evt_" + body.SessionID, Type: "checkout.session.completed", Session: *status}, nil
}

func (g *fakeGateway) pay(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessions[sessionID].Status = "complete"
	g.sessions[sessionID].PaymentStatus = entity.PaymentStatusPaid
}

type nopPublisher struct{}

func (nopPublisher) PublishPurchaseEvent(context.Context, *service.PurchaseEvent) error { return nil }
func (nopPublisher) Close() error                                                      { return nil }

type unusedIdentityProvider struct{}

func (unusedIdentityProvider) ExchangeSession(context.Context, string) (*service.IdentityProfile, error) {
	return nil, errors.New("identity provider not available in tests")
}

type testServer struct {
	echo    *echo.Echo
	gateway *fakeGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(context.Background(), db))

	cfg := &config.Config{
		Auth:    &config.AuthConfig{BcryptCost: 4, TokenTTL: 7 * 24 * time.Hour, SessionTTL: 7 * 24 * time.Hour},
		Stripe:  &config.StripeConfig{Currency: "usd"},
		Storage: &config.StorageConfig{MaxUploadSize: "10M"},
	}
	cfg.SecretKey.Token = "scenario-secret"
	cfg.HTTP.PathPrefix = "/api"
	cfg.HTTP.MaxRequestBodySize = "1M"

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	txManager := postgres.NewTransactionManager(db)
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	trackRepo := postgres.NewTrackRepository(db)
	albumRepo := postgres.NewAlbumRepository(db)
	paymentRepo := postgres.NewPaymentTransactionRepository(db)
	qr := qrcode.NewQRCodeService(256, "M", "http://localhost:3000")
	gateway := newFakeGateway()

	ledger := impl.NewLedgerService(impl.LedgerServiceParams{
		PurchaseRepo: postgres.NewPurchaseRepository(db),
		TrackRepo:    trackRepo,
		AlbumRepo:    albumRepo,
		Logger:       log,
	})
	resolver := impl.NewSessionResolver(impl.SessionResolverParams{
		UserRepo:     userRepo,
		SessionRepo:  sessionRepo,
		TokenService: tokens,
		Logger:       log,
	})

	routerParams := router.RouterParams{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{
			AuthUC: impl.NewAuthService(impl.AuthServiceParams{
				TxManager:        txManager,
				UserRepo:         userRepo,
				SessionRepo:      sessionRepo,
				Hasher:           auth.NewBcryptHasher(cfg),
				TokenService:     tokens,
				IdentityProvider: unusedIdentityProvider{},
				Config:           cfg,
				Logger:           log,
			}),
			Config: cfg,
			Logger: log,
		}),
		TrackHandler: handler.NewTrackHandler(handler.TrackHandlerParams{
			TrackUC: impl.NewTrackService(impl.TrackServiceParams{TrackRepo: trackRepo, AlbumRepo: albumRepo, QRService: qr, Logger: log}),
			Logger:  log,
		}),
		AlbumHandler: handler.NewAlbumHandler(handler.AlbumHandlerParams{
			AlbumUC: impl.NewAlbumService(impl.AlbumServiceParams{AlbumRepo: albumRepo, QRService: qr, Logger: log}),
			Logger:  log,
		}),
		ArtistHandler: handler.NewArtistHandler(handler.ArtistHandlerParams{
			ArtistUC: impl.NewArtistService(impl.ArtistServiceParams{UserRepo: userRepo, TrackRepo: trackRepo, AlbumRepo: albumRepo, Logger: log}),
			Logger:   log,
		}),
		PlaylistHandler: handler.NewPlaylistHandler(handler.PlaylistHandlerParams{
			PlaylistUC: impl.NewPlaylistService(impl.PlaylistServiceParams{PlaylistRepo: postgres.NewPlaylistRepository(db), Logger: log}),
			Logger:     log,
		}),
		LikeHandler: handler.NewLikeHandler(handler.LikeHandlerParams{
			LikeUC: impl.NewLikeService(impl.LikeServiceParams{TxManager: txManager, LikeRepo: postgres.NewLikeRepository(db), Logger: log}),
			Logger: log,
		}),
		PurchaseHandler: handler.NewPurchaseHandler(handler.PurchaseHandlerParams{
			CheckoutUC: impl.NewCheckoutService(impl.CheckoutServiceParams{
				TrackRepo:   trackRepo,
				AlbumRepo:   albumRepo,
				PaymentRepo: paymentRepo,
				Ledger:      ledger,
				Gateway:     gateway,
				Publisher:   nopPublisher{},
				Config:      cfg,
				Logger:      log,
			}),
			LedgerUC: ledger,
			Logger:   log,
		}),
		FileHandler: handler.NewFileHandler(handler.FileHandlerParams{
			FileUC: impl.NewFileService(impl.FileServiceParams{Storage: storage.NewBlobStorage(bucket), Config: cfg, Logger: log}),
			Logger: log,
		}),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(apimiddleware.AuthMiddlewareParams{Resolver: resolver}),
		Config:         cfg,
	}

	return &testServer{echo: NewEcho(cfg, log, routerParams), gateway: gateway}
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var out envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

// signUp registers and logs in, returning the signed token.
func (s *testServer) signUp(t *testing.T, email, artistName string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":       email,
		"password":    "correct-horse",
		"name":        "Someone",
		"artist_name": artistName,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	login := decode[struct {
		Token string `json:"token"`
	}](t, rec)
	require.NotEmpty(t, login.Data.Token)

	return login.Data.Token
}

func (s *testServer) createTrack(t *testing.T, token string, price int64) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/tracks", token, map[string]any{
		"title":  "Night Drive",
		"price":  price,
		"genre":  "synthwave",
		"status": "published",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[handler.TrackResponse](t, rec).Data.ID.String()
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec).Data["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_LoginSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "cookie@example.com", "")

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "cookie@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "session_token", cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 7*24*3600, cookie.MaxAge)

	// the cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	me := httptest.NewRecorder()
	s.echo.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "cookie@example.com", decode[handler.UserResponse](t, me).Data.Email)

	logout := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	logout.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	out := httptest.NewRecorder()
	s.echo.ServeHTTP(out, logout)
	require.Equal(t, http.StatusOK, out.Code)
	require.Len(t, out.Result().Cookies(), 1)
	assert.Negative(t, out.Result().Cookies()[0].MaxAge)
}

func TestServer_CheckoutPollAndWebhookGrantOnce(t *testing.T) {
	s := newTestServer(t)
	artist := s.signUp(t, "artist@example.com", "Neon Lakes")
	buyer := s.signUp(t, "buyer@example.com", "")
	trackID := s.createTrack(t, artist, 199)

	rec := s.do(t, http.MethodPost, "/api/purchases/checkout", buyer, map[string]string{
		"item_type":  "track",
		"item_id":    trackID,
		"origin_url": "http://localhost:3000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkout := decode[map[string]string](t, rec).Data
	sessionID := checkout["session_id"]
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "https://checkout.test/"+sessionID, checkout["url"])

	rec = s.do(t, http.MethodGet, "/api/purchases/status/"+sessionID, buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", decode[map[string]any](t, rec).Data["status"])

	s.gateway.pay(sessionID)

	rec = s.do(t, http.MethodGet, "/api/purchases/status/"+sessionID, buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec).Data
	assert.Equal(t, "complete", status["status"])
	assert.Equal(t, "paid", status["payment_status"])
	assert.EqualValues(t, 199, status["amount_total"])
	assert.Equal(t, "usd", status["currency"])

	webhook := func(signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe",
			bytes.NewReader([]byte(`{"session_id":"`+sessionID+`"}`)))
		req.Header.Set("Stripe-Signature", signature)
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)

		return rec
	}

	rec = webhook("t=1,v1=valid")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]bool](t, rec).Data["received"])

	rec = webhook("t=1,v1=forged")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SIGNATURE", decode[any](t, rec).Error.Code)

	rec = s.do(t, http.MethodGet, "/api/purchases/library", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	library := decode[struct {
		Tracks []handler.TrackResponse `json:"tracks"`
		Albums []handler.AlbumResponse `json:"albums"`
	}](t, rec).Data
	require.Len(t, library.Tracks, 1)
	assert.Equal(t, trackID, library.Tracks[0].ID.String())
	assert.Empty(t, library.Albums)

	rec = s.do(t, http.MethodPost, "/api/purchases/checkout", buyer, map[string]string{
		"item_type":  "track",
		"item_id":    trackID,
		"origin_url": "http://localhost:3000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_OWNED", decode[any](t, rec).Error.Code)

	// someone else cannot poll the buyer's session
	other := s.signUp(t, "other@example.com", "")
	rec = s.do(t, http.MethodGet, "/api/purchases/status/"+sessionID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_AudioByteRange(t *testing.T) {
	s := newTestServer(t)
	artist := s.signUp(t, "artist@example.com", "Neon Lakes")

	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i % 251)
	}

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "song.mp3")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/audio", &form)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+artist)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	fileURL := decode[map[string]string](t, rec).Data["file_url"]
	require.Regexp(t, `^/api/files/audio/[A-Za-z0-9_-]+\.mp3$`, fileURL)

	get := func(rangeHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, fileURL, nil)
		if rangeHeader != "" {
			req.Header.Set("Range", rangeHeader)
		}
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)

		return rec
	}

	rec = get("bytes=0-99")
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-99/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "100", rec.Header().Get(echo.HeaderContentLength))
	assert.Equal(t, content[:100], rec.Body.Bytes())

	rec = get("bytes=-10")
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, content[990:], rec.Body.Bytes())

	rec = get("")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes())

	rec = get("bytes=0-9,20-29")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Body.Bytes(), 1000)

	rec = get("bytes=5000-")
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"))

	rec = s.do(t, http.MethodGet, "/api/files/audio/..%2Fsecret", "", nil)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/files/audio/missing.mp3", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UploadRequiresArtist(t *testing.T) {
	s := newTestServer(t)
	listener := s.signUp(t, "listener@example.com", "")

	rec := s.do(t, http.MethodPost, "/api/upload/cover", listener, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/upload/cover", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_RoleToggle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "toggle@example.com", "")

	rec := s.do(t, http.MethodPost, "/api/tracks", token, map[string]any{"title": "Too Early", "price": 100})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/auth/role", token, map[string]string{"artist_name": "Toggle"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode[handler.UserResponse](t, rec).Data
	assert.Equal(t, "artist", user.Role)
	require.NotNil(t, user.ArtistName)
	assert.Equal(t, "Toggle", *user.ArtistName)

	s.createTrack(t, token, 100)

	rec = s.do(t, http.MethodPut, "/api/auth/role", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "listener", decode[handler.UserResponse](t, rec).Data.Role)

	rec = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[handler.UserResponse](t, rec).Data
	assert.Equal(t, "listener", me.Role)
	assert.Nil(t, me.ArtistName)

	rec = s.do(t, http.MethodPut, "/api/auth/role?artist_name=Query+Name", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user = decode[handler.UserResponse](t, rec).Data
	assert.Equal(t, "artist", user.Role)
	require.NotNil(t, user.ArtistName)
	assert.Equal(t, "Query Name", *user.ArtistName)
}

func TestServer_LikesAndPlaylists(t *testing.T) {
	s := newTestServer(t)
	artist := s.signUp(t, "artist@example.com", "Neon Lakes")
	fan := s.signUp(t, "fan@example.com", "")
	trackID := s.createTrack(t, artist, 100)

	for range 2 {
		rec := s.do(t, http.MethodPost, "/api/likes", fan, map[string]string{"item_type": "track", "item_id": trackID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, true, decode[map[string]any](t, rec).Data["liked"])
	}

	rec := s.do(t, http.MethodGet, "/api/tracks/"+trackID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[handler.TrackResponse](t, rec).Data.LikesCount)

	rec = s.do(t, http.MethodDelete, "/api/likes?item_type=track&item_id="+trackID, fan, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec).Data["liked"])

	rec = s.do(t, http.MethodGet, "/api/likes", fan, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]handler.LikeResponse](t, rec).Data)

	rec = s.do(t, http.MethodPost, "/api/playlists", fan, map[string]any{
		"name":      "Late",
		"track_ids": []string{trackID, trackID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	playlist := decode[handler.PlaylistResponse](t, rec).Data
	assert.Len(t, playlist.TrackIDs, 2)

	rec = s.do(t, http.MethodGet, "/api/playlists/"+playlist.ID.String(), artist, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/playlists/"+playlist.ID.String()+"/tracks", fan, map[string]any{"track_ids": []string{trackID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[handler.PlaylistResponse](t, rec).Data.TrackIDs, 1)

	rec = s.do(t, http.MethodGet, "/api/tracks/"+trackID+"/qr", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}
