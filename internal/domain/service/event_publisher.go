package service

import (
	"context"
)

// PurchaseEvent announces a newly granted entitlement.
type PurchaseEvent struct {
	RequestID  string `json:"request_id,omitempty"` // For distributed tracing
	EventType  string `json:"event_type"`
	PurchaseID string `json:"purchase_id"`
	UserID     string `json:"user_id"`
	ItemType   string `json:"item_type"`
	ItemID     string `json:"item_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	SessionID  string `json:"session_id"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishPurchaseEvent publishes a purchase event for async processing
	PublishPurchaseEvent(ctx context.Context, event *PurchaseEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
