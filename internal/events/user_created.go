package events

import "time"

const (
	UserLifecycleTopic = "edu.user.lifecycle.v1"
	UserCreatedType    = "user_created"
)

type UserCreatedEvent struct {
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
