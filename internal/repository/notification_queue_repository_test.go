package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/college-icrs/icrs-api/internal/models"
)

type listClientStub struct {
	pushed  [][]byte
	popped  []string
	popErr  error
	pushErr error
}

func (s *listClientStub) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		s.pushed = append(s.pushed, v.([]byte))
	}
	return redis.NewIntResult(int64(len(s.pushed)), s.pushErr)
}

func (s *listClientStub) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(s.popped, s.popErr)
}

func (s *listClientStub) LLen(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(s.pushed)), nil)
}

func TestNotificationQueuePushEncodesJSON(t *testing.T) {
	stub := &listClientStub{}
	repo := NewNotificationQueueRepository(stub, "")

	n := models.Notification{ID: "n1", Kind: models.NotificationStatusChanged, To: "student@college.edu", Subject: "s"}
	require.NoError(t, repo.Push(context.Background(), n))
	require.Len(t, stub.pushed, 1)

	var decoded models.Notification
	require.NoError(t, json.Unmarshal(stub.pushed[0], &decoded))
	assert.Equal(t, n.Kind, decoded.Kind)

	length, err := repo.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

func TestNotificationQueuePushError(t *testing.T) {
	stub := &listClientStub{pushErr: errors.New("connection refused")}
	repo := NewNotificationQueueRepository(stub, "q")

	err := repo.Push(context.Background(), models.Notification{ID: "n1"})
	assert.ErrorContains(t, err, "redis lpush q")
}

func TestNotificationQueuePop(t *testing.T) {
	payload, err := json.Marshal(models.Notification{ID: "n1", To: "a@college.edu"})
	require.NoError(t, err)
	stub := &listClientStub{popped: []string{"q", string(payload)}}
	repo := NewNotificationQueueRepository(stub, "q")

	n, err := repo.Pop(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "a@college.edu", n.To)
}

func TestNotificationQueuePopTimeout(t *testing.T) {
	stub := &listClientStub{popErr: redis.Nil}
	repo := NewNotificationQueueRepository(stub, "q")

	_, err := repo.Pop(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}
