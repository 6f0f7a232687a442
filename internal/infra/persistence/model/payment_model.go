package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentTransactionModel mirrors the 'payment_transactions' table.
type PaymentTransactionModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	SessionID     string            `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	ItemType      string            `gorm:"type:varchar(20);not null"`
	ItemID        uuid.UUID         `gorm:"type:uuid;not null"`
	Amount        int64             `gorm:"not null"`
	Currency      string            `gorm:"type:varchar(10);not null"`
	Status        string            `gorm:"type:varchar(20);not null;index:idx_payment_status_created"`
	PaymentStatus string            `gorm:"type:varchar(40)"`
	Metadata      map[string]string `gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time         `gorm:"index:idx_payment_status_created"`
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (PaymentTransactionModel) TableName() string {
	return "payment_transactions"
}

// PurchaseModel mirrors the 'purchases' table. The unique index makes a second grant a no-op.
type PurchaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_user_item"`
	ItemType  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_purchases_user_item"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_user_item"`
	Price     int64     `gorm:"not null"`
	SessionID string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PurchaseModel) TableName() string {
	return "purchases"
}

// SaleRecordModel mirrors the 'sale_records' table, keyed by purchase.
type SaleRecordModel struct {
	PurchaseID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemType   string    `gorm:"type:varchar(20);not null"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ArtistID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount     int64     `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (SaleRecordModel) TableName() string {
	return "sale_records"
}

// All lists every persistence model, in dependency order, for schema migration.
func All() []any {
	return []any{
		&UserModel{},
		&SessionModel{},
		&AlbumModel{},
		&TrackModel{},
		&PlaylistModel{},
		&LikeModel{},
		&PaymentTransactionModel{},
		&PurchaseModel{},
		&SaleRecordModel{},
	}
}
