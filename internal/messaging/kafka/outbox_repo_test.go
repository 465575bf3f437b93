package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-eduhr/internal/shared/contextutil"
	"go-eduhr/internal/shared/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-9")

	event, err := NewEvent(ctx, "user", "0b6d6f2e-6a8d-4b8f-9b61-1f1c1e0c2a11", "user_created", "edu.user.lifecycle.v1", map[string]string{"user_id": "u1"})

	assert.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "rid-9", event.RequestID)
	assert.Equal(t, OutboxStatusPending, event.Status)
	assert.NoError(t, ValidateOutboxEvent(event))

	var payload map[string]string
	assert.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "u1", payload["user_id"])
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := OutboxEvent{ID: "id", Topic: "t", Payload: []byte(`{}`), Status: OutboxStatusPending}

	tests := []struct {
		name   string
		mutate func(e *OutboxEvent)
		ok     bool
	}{
		{"valid", func(e *OutboxEvent) {}, true},
		{"missing id", func(e *OutboxEvent) { e.ID = "" }, false},
		{"missing topic", func(e *OutboxEvent) { e.Topic = "" }, false},
		{"empty payload", func(e *OutboxEvent) { e.Payload = nil }, false},
		{"unknown status", func(e *OutboxEvent) { e.Status = "queued" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := ValidateOutboxEvent(e)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestOutboxRepository_PurgeSent(t *testing.T) {
	db, sqlMock := testutil.NewGormMock(t)
	repo := NewOutboxRepository(db)

	sqlMock.ExpectExec(`DELETE FROM "outbox_events" WHERE status = \$1 AND processed_at < \$2`).
		WithArgs(OutboxStatusSent, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	purged, err := repo.PurgeSent(context.Background(), 7*24*time.Hour)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), purged)
}
