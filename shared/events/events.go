package events

import "time"

// Event types
const (
	AccountCreated             = "account.created"
	AccountUpdated             = "account.updated"
	AccountDeleted             = "account.deleted"
	AccountPromoted            = "account.promoted"
	AccountProfileImageUpdated = "account.profile_image_updated"
)

// Stream names
const (
	AccountEventsStream = "account.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountCreatedEvent struct {
	AccountID int64  `json:"accountId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
}

// AccountUpdatedEvent lists the field names a patch actually changed.
type AccountUpdatedEvent struct {
	AccountID int64    `json:"accountId"`
	Email     string   `json:"email"`
	Fields    []string `json:"fields"`
	ByAdmin   bool     `json:"byAdmin"`
}

type AccountDeletedEvent struct {
	AccountID int64  `json:"accountId"`
	Email     string `json:"email"`
}

type AccountPromotedEvent struct {
	AccountID int64  `json:"accountId"`
	Email     string `json:"email"`
}

type AccountProfileImageUpdatedEvent struct {
	AccountID   int64  `json:"accountId"`
	ImageKey    string `json:"imageKey"`
	PreviousKey string `json:"previousKey,omitempty"`
}
