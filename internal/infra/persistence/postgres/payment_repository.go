package postgres

import (
	"context"
	"time"

	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentTransactionRepository struct {
	db *gorm.DB
}

// NewPaymentTransactionRepository is the constructor for paymentTransactionRepository.
func NewPaymentTransactionRepository(db *gorm.DB) repository.PaymentTransactionRepository {
	return &paymentTransactionRepository{db: db}
}

func (repo *paymentTransactionRepository) Create(ctx context.Context, txn *entity.PaymentTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txnM := fromPaymentTransactionDomain(txn)

	if err := repo.db.WithContext(ctx).Create(txnM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("checkout session already recorded")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create payment transaction")
	}

	txn.CreatedAt = txnM.CreatedAt
	txn.UpdatedAt = txnM.UpdatedAt

	return nil
}

func (repo *paymentTransactionRepository) FindBySessionID(ctx context.Context, sessionID string) (*entity.PaymentTransaction, error) {
	var txnM model.PaymentTransactionModel

	if err := repo.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&txnM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTransactionNotFound
		}

		return nil, errors.Wrap(err, "failed to find payment transaction")
	}

	return toPaymentTransactionDomain(&txnM), nil
}

// UpdateStatusIfPending is a single conditional UPDATE; terminal rows never match.
func (repo *paymentTransactionRepository) UpdateStatusIfPending(
	ctx context.Context,
	sessionID string,
	status entity.TransactionStatus,
	paymentStatus string,
) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.PaymentTransactionModel{}).
		Where("session_id = ? AND status = ?", sessionID, string(entity.TransactionStatusPending)).
		Updates(map[string]any{
			"status":         string(status),
			"payment_status": paymentStatus,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update payment transaction status")
	}

	return result.RowsAffected > 0, nil
}

func (repo *paymentTransactionRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*entity.PaymentTransaction, error) {
	query := repo.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(entity.TransactionStatusPending), createdBefore).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var txnModels []*model.PaymentTransactionModel
	if err := query.Find(&txnModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list stale pending transactions")
	}

	txns := make([]*entity.PaymentTransaction, 0, len(txnModels))
	for _, txnM := range txnModels {
		txns = append(txns, toPaymentTransactionDomain(txnM))
	}

	return txns, nil
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository is the constructor for purchaseRepository.
func NewPurchaseRepository(db *gorm.DB) repository.PurchaseRepository {
	return &purchaseRepository{db: db}
}

// InsertIfAbsent relies on the (user_id, item_type, item_id) unique index.
func (repo *purchaseRepository) InsertIfAbsent(ctx context.Context, purchase *entity.Purchase) (bool, error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	purchaseM := &model.PurchaseModel{
		ID:        purchase.ID,
		UserID:    purchase.UserID,
		ItemType:  purchase.ItemType.String(),
		ItemID:    purchase.ItemID,
		Price:     purchase.Price,
		SessionID: purchase.SessionID,
		CreatedAt: purchase.CreatedAt,
	}

	result := repo.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(purchaseM)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to insert purchase")
	}

	purchase.CreatedAt = purchaseM.CreatedAt

	return result.RowsAffected == 1, nil
}

func (repo *purchaseRepository) Exists(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (bool, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.PurchaseModel{}).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType.String(), itemID).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check purchase")
	}

	return count > 0, nil
}

func (repo *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Purchase, error) {
	var purchaseModels []*model.PurchaseModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchaseModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list purchases")
	}

	purchases := make([]*entity.Purchase, 0, len(purchaseModels))
	for _, purchaseM := range purchaseModels {
		purchases = append(purchases, &entity.Purchase{
			ID:        purchaseM.ID,
			UserID:    purchaseM.UserID,
			ItemType:  entity.ItemType(purchaseM.ItemType),
			ItemID:    purchaseM.ItemID,
			Price:     purchaseM.Price,
			SessionID: purchaseM.SessionID,
			CreatedAt: purchaseM.CreatedAt,
		})
	}

	return purchases, nil
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository is the constructor for saleRepository.
func NewSaleRepository(db *gorm.DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

func (repo *saleRepository) InsertIfAbsent(ctx context.Context, sale *entity.SaleRecord) (bool, error) {
	saleM := &model.SaleRecordModel{
		PurchaseID: sale.PurchaseID,
		ItemType:   sale.ItemType.String(),
		ItemID:     sale.ItemID,
		ArtistID:   sale.ArtistID,
		Amount:     sale.Amount,
		CreatedAt:  sale.CreatedAt,
	}

	result := repo.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(saleM)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to insert sale record")
	}

	return result.RowsAffected == 1, nil
}

// --- Mapper Functions ---

func toPaymentTransactionDomain(data *model.PaymentTransactionModel) *entity.PaymentTransaction {
	return &entity.PaymentTransaction{
		ID:            data.ID,
		SessionID:     data.SessionID,
		UserID:        data.UserID,
		ItemType:      entity.ItemType(data.ItemType),
		ItemID:        data.ItemID,
		Amount:        data.Amount,
		Currency:      data.Currency,
		Status:        entity.TransactionStatus(data.Status),
		PaymentStatus: data.PaymentStatus,
		Metadata:      data.Metadata,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func fromPaymentTransactionDomain(data *entity.PaymentTransaction) *model.PaymentTransactionModel {
	return &model.PaymentTransactionModel{
		ID:            data.ID,
		SessionID:     data.SessionID,
		UserID:        data.UserID,
		ItemType:      data.ItemType.String(),
		ItemID:        data.ItemID,
		Amount:        data.Amount,
		Currency:      data.Currency,
		Status:        string(data.Status),
		PaymentStatus: data.PaymentStatus,
		Metadata:      data.Metadata,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}
