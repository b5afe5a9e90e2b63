package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/formflow/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupMockRedis(t *testing.T) *redis.Client {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)

	return redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
}

func TestAppend_StoresAndIndexesRecord(t *testing.T) {
	client := setupMockRedis(t)
	logger := NewLogger(client)
	ctx := context.Background()

	record := models.EmailLog{
		ID:        "log-1",
		Kind:      models.KindFormPublished,
		To:        "owner@x.com",
		Subject:   "Form Published: Survey A",
		SentAt:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Success:   true,
		MessageID: "msg-123",
		Provider:  "gmail",
	}

	assert.NoError(t, logger.Append(ctx, record))

	data, err := client.Get(ctx, "emaillog:log-1").Result()
	assert.NoError(t, err)

	var stored models.EmailLog
	assert.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.Equal(t, record, stored)

	ids, err := client.LRange(ctx, "emaillogs", 0, -1).Result()
	assert.NoError(t, err)
	assert.Equal(t, []string{"log-1"}, ids)
}

func TestAppend_FailureRecordKeepsErrorDetail(t *testing.T) {
	client := setupMockRedis(t)
	logger := NewLogger(client)
	ctx := context.Background()

	record := models.EmailLog{
		ID:      "log-2",
		Kind:    models.KindNewSubmission,
		To:      "owner@x.com",
		Subject: "New Submission: Survey A",
		SentAt:  time.Now().UTC(),
		Success: false,
		Error:   "smtp send failed: timeout",
	}

	assert.NoError(t, logger.Append(ctx, record))

	data, err := client.Get(ctx, "emaillog:log-2").Result()
	assert.NoError(t, err)
	var stored models.EmailLog
	assert.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.False(t, stored.Success)
	assert.Equal(t, "smtp send failed: timeout", stored.Error)
}

func TestAppend_FailsWhenRedisDown(t *testing.T) {
	s, err := miniredis.Run()
	assert.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	s.Close()

	logger := NewLogger(client)
	err = logger.Append(context.Background(), models.EmailLog{ID: "log-3"})
	assert.Error(t, err)
}
