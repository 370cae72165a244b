package jobxredis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/jobx"
	"github.com/Abraxas-365/reactorbot/pkg/jobx/jobxredis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newQueue connects to REACTORBOT_TEST_REDIS_ADDR and skips when it is unset.
func newQueue(t *testing.T) *jobxredis.RedisQueue {
	t.Helper()
	addr := os.Getenv("REACTORBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REACTORBOT_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	return jobxredis.NewRedisQueue(rdb, "test-"+uuid.NewString())
}

func TestRedisQueue_Lifecycle(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, jobx.Job{Type: "review-reminder", Queue: "default", Payload: []byte(`{}`), MaxRetries: 1})
	require.NoError(t, err)

	job, err := q.Dequeue(ctx, []string{"default"}, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, jobx.JobStatusActive, job.Status)

	retry, err := q.Fail(ctx, id, "boom")
	require.NoError(t, err)
	assert.False(t, retry)

	info, err := q.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, jobx.JobStatusFailed, info.Status)
	assert.Equal(t, "boom", info.Error)
}

func TestRedisQueue_KeyedJobsAreUnique(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()
	job := jobx.Job{Type: "review-reminder", Queue: "default", Key: "acme/widgets#12", MaxRetries: 1}

	id, err := q.EnqueueDelayed(ctx, job, time.Hour)
	require.NoError(t, err)

	_, err = q.EnqueueDelayed(ctx, job, time.Hour)
	assert.True(t, jobx.IsDuplicate(err))

	require.NoError(t, q.Complete(ctx, id, nil))
	_, err = q.EnqueueDelayed(ctx, job, time.Hour)
	assert.NoError(t, err)
}

func TestRedisQueue_PromoteScheduled(t *testing.T) {
	q := newQueue(t)
	ctx := context.Background()

	id, err := q.EnqueueDelayed(ctx, jobx.Job{Type: "t", Queue: "default", MaxRetries: 1}, time.Millisecond)
	require.NoError(t, err)

	job, err := q.Dequeue(ctx, []string{"default"}, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, job, "scheduled job must not be ready before promotion")

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, q.PromoteScheduled(ctx, []string{"default"}))

	job, err = q.Dequeue(ctx, []string{"default"}, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, id, job.ID)
}
