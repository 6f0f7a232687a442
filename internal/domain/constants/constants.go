// Package constants contains string constants shared across layers.
package constants

// Environment names.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub provider identifiers.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Event types published on the event bus.
const (
	EventTypePurchaseCompleted = "purchase.completed"
)

// SessionCookieName is the cookie carrying either credential scheme.
const SessionCookieName = "session_token"
