package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced         = "order.placed"
	EventOrderStatusChanged  = "order.status_changed"
	EventReturnCreated       = "return.created"
	EventReturnTransitioned  = "return.transitioned"
	EventCustomerScoreChange = "customer.score_changed"
)

// Event is published after the transaction that produced it commits.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func NewEvent(eventType, key string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
