package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mindcare-go/pkg/tasks"
)

type stubProcessor struct {
	err   error
	calls int
}

func (p *stubProcessor) Process(context.Context, tasks.PlanArchiveTask) error {
	p.calls++
	return p.err
}

func newCounter(t *testing.T) AttemptCounter {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisAttemptCounter(rdb)
}

func encode(t *testing.T, task tasks.PlanArchiveTask) []byte {
	b, err := json.Marshal(task)
	require.NoError(t, err)
	return b
}

func TestHandleMessage_CommitsMalformed(t *testing.T) {
	p := &stubProcessor{}
	assert.True(t, handleMessage(context.Background(), []byte("{not json"), p, newCounter(t)))
	assert.Zero(t, p.calls)
}

func TestHandleMessage_Success(t *testing.T) {
	p := &stubProcessor{}
	task := tasks.PlanArchiveTask{UserID: 1, Topic: "stress", GeneratedAt: time.Now()}
	assert.True(t, handleMessage(context.Background(), encode(t, task), p, newCounter(t)))
	assert.Equal(t, 1, p.calls)
}

func TestHandleMessage_GivesUpAfterMaxAttempts(t *testing.T) {
	p := &stubProcessor{err: errors.New("minio down")}
	counter := newCounter(t)
	value := encode(t, tasks.PlanArchiveTask{UserID: 1, Topic: "stress", GeneratedAt: time.Now()})

	for i := 1; i < maxAttempts; i++ {
		assert.False(t, handleMessage(context.Background(), value, p, counter), "attempt %d", i)
	}
	assert.True(t, handleMessage(context.Background(), value, p, counter))
	assert.Equal(t, maxAttempts, p.calls)
}
