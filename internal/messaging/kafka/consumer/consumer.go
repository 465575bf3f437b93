package consumer

import (
	"context"
	"encoding/json"

	"go-eduhr/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// BalanceSeeder creates the missing leave balances of one user.
type BalanceSeeder interface {
	SeedBalancesForUser(ctx context.Context, userID string) (int64, error)
}

// ConsumeUserLifecycle seeds leave balances for every user_created event.
// Malformed or unrelated messages are committed and skipped; seeding errors
// leave the message uncommitted so it is redelivered.
func ConsumeUserLifecycle(
	ctx context.Context,
	reader MessageReader,
	seeder BalanceSeeder,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.user_lifecycle")
	log.Info("user lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("user lifecycle consumer stopped")
				return
			}
			log.Error("fetch user lifecycle message failed", zap.Error(err))
			continue
		}

		handleUserLifecycleMessage(ctx, reader, seeder, log, msg)
	}
}

func handleUserLifecycleMessage(
	ctx context.Context,
	reader MessageReader,
	seeder BalanceSeeder,
	log *zap.Logger,
	msg kafkago.Message,
) {
	var event events.UserCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode user lifecycle event failed", zap.Error(err))
		commit(ctx, reader, log, msg)
		return
	}

	if event.EventType != events.UserCreatedType || event.UserID == "" {
		log.Debug("skipping user lifecycle event", zap.String("event_type", event.EventType))
		commit(ctx, reader, log, msg)
		return
	}

	created, err := seeder.SeedBalancesForUser(ctx, event.UserID)
	if err != nil {
		log.Error("seed leave balances failed",
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
		return
	}

	commit(ctx, reader, log, msg)
	log.Info("leave balances seeded from user_created event",
		zap.String("user_id", event.UserID),
		zap.Int64("created", created),
	)
}

func commit(ctx context.Context, reader MessageReader, log *zap.Logger, msg kafkago.Message) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit user lifecycle message failed", zap.Error(err))
	}
}
