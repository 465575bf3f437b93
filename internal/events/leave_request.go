package events

import "time"

const LeaveRequestLifecycleTopic = "edu.leave.request.lifecycle.v1"

const (
	LeaveAppliedType   = "leave_applied"
	LeaveApprovedType  = "leave_approved"
	LeaveRejectedType  = "leave_rejected"
	LeaveCancelledType = "leave_cancelled"
	LeaveEditedType    = "leave_edited"
)

type LeaveRequestEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID string    `json:"leave_request_id"`
	UserID         string    `json:"user_id"`
	LeaveTypeID    string    `json:"leave_type_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Days           int       `json:"days"`
	ActorID        string    `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
