package jobxredis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/jobx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// uniqueGrace keeps a job key reserved this long after the job becomes due,
// covering its retries.
const uniqueGrace = time.Hour

// RedisQueue implements jobx.Queue backed by Redis.
type RedisQueue struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisQueue creates a new Redis-backed queue. Keys are namespaced by
// prefix, "reactorbot" when empty.
func NewRedisQueue(rdb redis.UniversalClient, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = "reactorbot"
	}
	return &RedisQueue{rdb: rdb, prefix: prefix}
}

func (q *RedisQueue) queueKey(name string) string     { return q.prefix + ":jobx:queue:" + name }
func (q *RedisQueue) scheduledKey(name string) string { return q.prefix + ":jobx:scheduled:" + name }
func (q *RedisQueue) jobKey(id string) string         { return q.prefix + ":jobx:job:" + id }
func (q *RedisQueue) uniqueKey(key string) string     { return q.prefix + ":jobx:unique:" + key }

func newInfo(job jobx.Job) jobx.JobInfo {
	now := time.Now().UTC()
	return jobx.JobInfo{
		ID:         uuid.New().String(),
		Type:       job.Type,
		Queue:      job.Queue,
		Key:        job.Key,
		Payload:    job.Payload,
		Status:     jobx.JobStatusPending,
		MaxRetries: job.MaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// reserve claims job.Key for the new job. It returns a duplicate error
// when another job holds the key.
func (q *RedisQueue) reserve(ctx context.Context, job jobx.Job, id string, ttl time.Duration) error {
	if job.Key == "" {
		return nil
	}
	ok, err := q.rdb.SetNX(ctx, q.uniqueKey(job.Key), id, ttl).Result()
	if err != nil {
		return redisErrors.NewWithCause(ErrEnqueue, err).WithDetail("key", job.Key)
	}
	if !ok {
		return jobx.DuplicateError(job.Key)
	}
	return nil
}

// Enqueue adds a job to the ready queue immediately.
func (q *RedisQueue) Enqueue(ctx context.Context, job jobx.Job) (string, error) {
	return q.EnqueueDelayed(ctx, job, 0)
}

// EnqueueDelayed adds a job to the scheduled set with a future execution
// time, or straight to the ready queue when delay is not positive.
func (q *RedisQueue) EnqueueDelayed(ctx context.Context, job jobx.Job, delay time.Duration) (string, error) {
	info := newInfo(job)

	data, err := json.Marshal(info)
	if err != nil {
		return "", redisErrors.NewWithCause(ErrMarshal, err)
	}

	if err := q.reserve(ctx, job, info.ID, max(delay, 0)+uniqueGrace); err != nil {
		return "", err
	}

	pipe := q.rdb.TxPipeline()
	pipe.Set(ctx, q.jobKey(info.ID), data, 0)
	if delay > 0 {
		score := float64(info.CreatedAt.Add(delay).Unix())
		pipe.ZAdd(ctx, q.scheduledKey(job.Queue), redis.Z{Score: score, Member: info.ID})
	} else {
		pipe.LPush(ctx, q.queueKey(job.Queue), info.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", redisErrors.NewWithCause(ErrEnqueue, err).
			WithDetail("queue", job.Queue).
			WithDetail("delay", delay.String())
	}

	return info.ID, nil
}

// GetJob retrieves job info by ID.
func (q *RedisQueue) GetJob(ctx context.Context, jobID string) (*jobx.JobInfo, error) {
	data, err := q.rdb.Get(ctx, q.jobKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redisErrors.New(ErrNotFound).WithDetail("job_id", jobID)
		}
		return nil, redisErrors.NewWithCause(ErrGetJob, err).WithDetail("job_id", jobID)
	}

	var info jobx.JobInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, redisErrors.NewWithCause(ErrUnmarshal, err).WithDetail("job_id", jobID)
	}

	return &info, nil
}

func (q *RedisQueue) save(ctx context.Context, info *jobx.JobInfo, code *errx.ErrorCode) error {
	info.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(info)
	if err != nil {
		return redisErrors.NewWithCause(ErrMarshal, err).WithDetail("job_id", info.ID)
	}
	if err := q.rdb.Set(ctx, q.jobKey(info.ID), data, 0).Err(); err != nil {
		return redisErrors.NewWithCause(code, err).WithDetail("job_id", info.ID)
	}
	return nil
}

// Dequeue blocks until a job is available from one of the given queues or the timeout expires.
func (q *RedisQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	keys := make([]string, len(queues))
	for i, name := range queues {
		keys[i] = q.queueKey(name)
	}

	result, err := q.rdb.BRPop(ctx, timeout, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, redisErrors.NewWithCause(ErrDequeue, err)
	}

	// result[0] is the key, result[1] the job id
	info, err := q.GetJob(ctx, result[1])
	if err != nil {
		return nil, err
	}

	info.Status = jobx.JobStatusActive
	info.Attempts++
	if err := q.save(ctx, info, ErrDequeue); err != nil {
		return nil, err
	}
	return info, nil
}

// Complete marks a job as successfully completed and releases its key.
func (q *RedisQueue) Complete(ctx context.Context, jobID string, result []byte) error {
	info, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	info.Status = jobx.JobStatusCompleted
	info.Result = result
	if err := q.save(ctx, info, ErrComplete); err != nil {
		return err
	}
	return q.release(ctx, info, ErrComplete)
}

// Fail marks a job as failed. Returns true if the job should be retried.
func (q *RedisQueue) Fail(ctx context.Context, jobID string, errMsg string) (bool, error) {
	info, err := q.GetJob(ctx, jobID)
	if err != nil {
		return false, err
	}

	shouldRetry := info.Attempts < info.MaxRetries
	if shouldRetry {
		info.Status = jobx.JobStatusRetrying
	} else {
		info.Status = jobx.JobStatusFailed
	}
	info.Error = errMsg

	if err := q.save(ctx, info, ErrFail); err != nil {
		return false, err
	}
	if !shouldRetry {
		return false, q.release(ctx, info, ErrFail)
	}
	return true, nil
}

// release frees the job's unique key if this job still owns it.
func (q *RedisQueue) release(ctx context.Context, info *jobx.JobInfo, code *errx.ErrorCode) error {
	if info.Key == "" {
		return nil
	}
	err := releaseScript.Run(ctx, q.rdb, []string{q.uniqueKey(info.Key)}, info.ID).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return redisErrors.NewWithCause(code, err).WithDetail("job_id", info.ID)
	}
	return nil
}

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// Retry re-enqueues a failed job with a delay.
func (q *RedisQueue) Retry(ctx context.Context, jobID string, delay time.Duration) error {
	info, err := q.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	score := float64(time.Now().UTC().Add(delay).Unix())
	if err := q.rdb.ZAdd(ctx, q.scheduledKey(info.Queue), redis.Z{
		Score:  score,
		Member: jobID,
	}).Err(); err != nil {
		return redisErrors.NewWithCause(ErrRetry, err).WithDetail("job_id", jobID)
	}

	return nil
}

// promoteScript moves due jobs from the scheduled set to the ready queue atomically.
var promoteScript = redis.NewScript(`
local scheduled_key = KEYS[1]
local queue_key = KEYS[2]
local now = tonumber(ARGV[1])
local ids = redis.call('ZRANGEBYSCORE', scheduled_key, '-inf', now)
if #ids > 0 then
    for _, id in ipairs(ids) do
        redis.call('LPUSH', queue_key, id)
    end
    redis.call('ZREMRANGEBYSCORE', scheduled_key, '-inf', now)
end
return #ids
`)

// PromoteScheduled moves jobs whose scheduled time has passed to the ready queue.
func (q *RedisQueue) PromoteScheduled(ctx context.Context, queues []string) error {
	now := strconv.FormatInt(time.Now().UTC().Unix(), 10)

	for _, name := range queues {
		err := promoteScript.Run(ctx, q.rdb,
			[]string{q.scheduledKey(name), q.queueKey(name)},
			now,
		).Err()

		if err != nil && !errors.Is(err, redis.Nil) {
			return redisErrors.NewWithCause(ErrPromote, err).WithDetail("queue", name)
		}
	}

	return nil
}
