package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formflow/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	logKeyPrefix = "emaillog:"
	logIndexKey  = "emaillogs"
)

// Logger appends one record per send attempt to the email log collection.
// Records are append-only: this subsystem never updates or deletes them.
type Logger struct {
	redis *redis.Client
}

func NewLogger(redisClient *redis.Client) *Logger {
	return &Logger{redis: redisClient}
}

// Append stores the record and indexes it. The caller decides what to do with
// a failure; dispatch swallows it so the delivery outcome stays accurate.
func (l *Logger) Append(ctx context.Context, record models.EmailLog) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal email log: %w", err)
	}

	key := logKeyPrefix + record.ID
	if err := l.redis.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store email log: %w", err)
	}
	if err := l.redis.LPush(ctx, logIndexKey, record.ID).Err(); err != nil {
		return fmt.Errorf("failed to index email log: %w", err)
	}
	return nil
}
