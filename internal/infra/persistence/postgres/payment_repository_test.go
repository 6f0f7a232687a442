package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pandore/internal/domain/entity"
	"pandore/internal/domain/repository"
	"pandore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentTransactionRepository_ConditionalUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentTransactionRepository(db)
	ctx := context.Background()

	txn := &entity.PaymentTransaction{
		SessionID: "cs_test_1",
		UserID:    uuid.New(),
		ItemType:  entity.ItemTypeTrack,
		ItemID:    uuid.New(),
		Amount:    999,
		Currency:  "usd",
		Status:    entity.TransactionStatusPending,
		Metadata:  map[string]string{"item_type": "track"},
	}
	require.NoError(t, repo.Create(ctx, txn))

	updated, err := repo.UpdateStatusIfPending(ctx, "cs_test_1", entity.TransactionStatusComplete, entity.PaymentStatusPaid)
	require.NoError(t, err)
	assert.True(t, updated)

	// A late failure event must not overwrite the terminal state.
	updated, err = repo.UpdateStatusIfPending(ctx, "cs_test_1", entity.TransactionStatusFailed, entity.PaymentStatusUnpaid)
	require.NoError(t, err)
	assert.False(t, updated)

	found, err := repo.FindBySessionID(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusComplete, found.Status)
	assert.Equal(t, entity.PaymentStatusPaid, found.PaymentStatus)
	assert.Equal(t, "track", found.Metadata["item_type"])

	_, err = repo.FindBySessionID(ctx, "cs_missing")
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
}

func TestPaymentTransactionRepository_ListStalePending(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentTransactionRepository(db)
	ctx := context.Background()

	old := &entity.PaymentTransaction{SessionID: "cs_old", UserID: uuid.New(), ItemType: entity.ItemTypeTrack, ItemID: uuid.New(), Currency: "usd", Status: entity.TransactionStatusPending}
	fresh := &entity.PaymentTransaction{SessionID: "cs_fresh", UserID: uuid.New(), ItemType: entity.ItemTypeTrack, ItemID: uuid.New(), Currency: "usd", Status: entity.TransactionStatusPending}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, db.Model(&model.PaymentTransactionModel{}).
		Where("session_id = ?", "cs_old").
		UpdateColumn("created_at", time.Now().Add(-2*time.Hour)).Error)

	stale, err := repo.ListStalePending(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "cs_old", stale[0].SessionID)
}

func TestPurchaseRepository_ConcurrentGrantsInsertOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewPurchaseRepository(db)
	ctx := context.Background()
	userID, itemID := uuid.New(), uuid.New()

	const workers = 8
	var granted atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := repo.InsertIfAbsent(ctx, &entity.Purchase{
				UserID:   userID,
				ItemType: entity.ItemTypeAlbum,
				ItemID:   itemID,
				Price:    4999,
			})
			assert.NoError(t, err)
			if inserted {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), granted.Load())

	owned, err := repo.Exists(ctx, userID, entity.ItemTypeAlbum, itemID)
	require.NoError(t, err)
	assert.True(t, owned)

	purchases, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestSaleRepository_InsertIfAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()
	sale := &entity.SaleRecord{PurchaseID: uuid.New(), ItemType: entity.ItemTypeTrack, ItemID: uuid.New(), ArtistID: uuid.New(), Amount: 999}

	inserted, err := repo.InsertIfAbsent(ctx, sale)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, sale)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	err := tm.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.UserRepo().Create(ctx, &entity.User{Email: "rollback@example.com", Name: "R", Role: entity.RoleListener}); err != nil {
			return err
		}

		return repository.ErrTrackNotFound
	})
	assert.ErrorIs(t, err, repository.ErrTrackNotFound)

	_, err = NewUserRepository(db).FindByEmail(ctx, "rollback@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
