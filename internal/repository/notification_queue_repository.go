package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/college-icrs/icrs-api/internal/models"
)

// ErrQueueEmpty is returned by Pop when no notification arrived before the timeout.
var ErrQueueEmpty = errors.New("notification queue empty")

type redisListClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// NotificationQueueRepository keeps pending notifications in a Redis list so several API
// instances can share one pool of mail workers.
type NotificationQueueRepository struct {
	client redisListClient
	key    string
}

// NewNotificationQueueRepository constructs the repository.
func NewNotificationQueueRepository(client redisListClient, key string) *NotificationQueueRepository {
	if key == "" {
		key = "icrs:notifications"
	}
	return &NotificationQueueRepository{client: client, key: key}
}

// Push appends a notification to the head of the list.
func (r *NotificationQueueRepository) Push(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", n.ID, err)
	}
	if err := r.client.LPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", r.key, err)
	}
	return nil
}

// Pop blocks up to timeout for the oldest notification.
func (r *NotificationQueueRepository) Pop(ctx context.Context, timeout time.Duration) (*models.Notification, error) {
	values, err := r.client.BRPop(ctx, timeout, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("redis brpop %s: %w", r.key, err)
	}
	// BRPOP replies with [key, value].
	if len(values) != 2 {
		return nil, fmt.Errorf("redis brpop %s: unexpected reply length %d", r.key, len(values))
	}

	var n models.Notification
	if err := json.Unmarshal([]byte(values[1]), &n); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w", err)
	}
	return &n, nil
}

// Len reports the number of pending notifications.
func (r *NotificationQueueRepository) Len(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen %s: %w", r.key, err)
	}
	return n, nil
}
