package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"pandore/config"
	"pandore/internal/domain/entity"
	"pandore/internal/domain/repository"
	"pandore/internal/domain/service"
	"pandore/internal/infra/auth"
	"pandore/internal/infra/persistence/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth:   &config.AuthConfig{BcryptCost: 4},
		Stripe: &config.StripeConfig{Currency: "usd"},
	}
	cfg.SecretKey.Token = "test-secret"
	cfg.HTTP.PathPrefix = "/api"

	return cfg
}

// testEnv wires the real gorm repositories over a private in-memory SQLite database.
type testEnv struct {
	db           *gorm.DB
	cfg          *config.Config
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	trackRepo    repository.TrackRepository
	albumRepo    repository.AlbumRepository
	playlistRepo repository.PlaylistRepository
	likeRepo     repository.LikeRepository
	paymentRepo  repository.PaymentTransactionRepository
	purchaseRepo repository.PurchaseRepository
	saleRepo     repository.SaleRepository
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		db:           db,
		cfg:          newTestConfig(),
		txManager:    postgres.NewTransactionManager(db),
		userRepo:     postgres.NewUserRepository(db),
		sessionRepo:  postgres.NewSessionRepository(db),
		trackRepo:    postgres.NewTrackRepository(db),
		albumRepo:    postgres.NewAlbumRepository(db),
		playlistRepo: postgres.NewPlaylistRepository(db),
		likeRepo:     postgres.NewLikeRepository(db),
		paymentRepo:  postgres.NewPaymentTransactionRepository(db),
		purchaseRepo: postgres.NewPurchaseRepository(db),
		saleRepo:     postgres.NewSaleRepository(db),
	}
}

func (env *testEnv) tokenService(t *testing.T) service.TokenService {
	t.Helper()

	tokens, err := auth.NewJWTService(env.cfg)
	require.NoError(t, err)

	return tokens
}

func (env *testEnv) createUser(t *testing.T, email, artistName string) *entity.User {
	t.Helper()

	user := &entity.User{ID: uuid.New(), Email: email, Name: "User " + email, Role: entity.RoleListener}
	user.ApplyArtistName(artistName)
	require.NoError(t, env.userRepo.Create(context.Background(), user))

	return user
}

func (env *testEnv) createTrack(t *testing.T, artist *entity.User, price int64) *entity.Track {
	t.Helper()

	track := &entity.Track{
		ID:         uuid.New(),
		ArtistID:   artist.ID,
		ArtistName: artist.DisplayArtistName(),
		Title:      "Track " + uuid.NewString()[:8],
		Price:      price,
		Genre:      "ambient",
		Status:     entity.TrackStatusPublished,
	}
	require.NoError(t, env.trackRepo.Create(context.Background(), track))

	return track
}

func (env *testEnv) createAlbum(t *testing.T, artist *entity.User, price int64) *entity.Album {
	t.Helper()

	album := &entity.Album{
		ID:         uuid.New(),
		ArtistID:   artist.ID,
		ArtistName: artist.DisplayArtistName(),
		Title:      "Album " + uuid.NewString()[:8],
		Price:      price,
	}
	require.NoError(t, env.albumRepo.Create(context.Background(), album))

	return album
}

func (env *testEnv) ledger() *ledgerService {
	return NewLedgerService(LedgerServiceParams{
		PurchaseRepo: env.purchaseRepo,
		TrackRepo:    env.trackRepo,
		AlbumRepo:    env.albumRepo,
		Logger:       newDiscardLogger(),
	}).(*ledgerService)
}

func (env *testEnv) checkout(gateway service.PaymentGateway, publisher service.EventPublisher) *checkoutService {
	return newCheckoutService(CheckoutServiceParams{
		TrackRepo:   env.trackRepo,
		AlbumRepo:   env.albumRepo,
		PaymentRepo: env.paymentRepo,
		Ledger:      env.ledger(),
		Gateway:     gateway,
		Publisher:   publisher,
		Config:      env.cfg,
		Logger:      newDiscardLogger(),
	})
}

// mockGateway is a testify mock of the payment provider.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req *service.CheckoutRequest) (*service.CheckoutSession, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*service.CheckoutSession)

	return session, args.Error(1)
}

func (m *mockGateway) GetCheckoutStatus(ctx context.Context, sessionID string) (*service.CheckoutStatus, error) {
	args := m.Called(ctx, sessionID)
	status, _ := args.Get(0).(*service.CheckoutStatus)

	return status, args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*service.WebhookEvent, error) {
	args := m.Called(payload, signature)
	event, _ := args.Get(0).(*service.WebhookEvent)

	return event, args.Error(1)
}

// mockIdentityProvider is a testify mock of the identity provider.
type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) ExchangeSession(ctx context.Context, sessionID string) (*service.IdentityProfile, error) {
	args := m.Called(ctx, sessionID)
	profile, _ := args.Get(0).(*service.IdentityProfile)

	return profile, args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.PurchaseEvent
	err    error
}

func (p *recordingPublisher) PublishPurchaseEvent(_ context.Context, event *service.PurchaseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) published() []*service.PurchaseEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*service.PurchaseEvent(nil), p.events...)
}
