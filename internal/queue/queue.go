// Package queue implements C7, the Job Queue: four named durable FIFO
// queues (dxf, gcode, drilling, zip) plus a DLQ, backed by Redis lists.
// Grounded directly on original_source/api/queues.py's
// lpush(cam:<kind>)/rpop pattern, generalized to a blocking multi-queue
// pop via BRPOP and wrapped in the typed-client style of
// smilemakc-mbflow's internal/infrastructure/cache.RedisCache
// (context.Context-first methods, a Health check, PoolSize set from
// config, fixed dial/read/write timeouts).
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/config"
)

// Name is one of the four active queues.
type Name string

const (
	DXF      Name = "dxf"
	GCode    Name = "gcode"
	Drilling Name = "drilling"
	ZIP      Name = "zip"
)

// All is the active set BRPOP polls across, in spec.md §4.8's order.
var All = []Name{DXF, GCode, Drilling, ZIP}

func key(n Name) string {
	return "cam:" + string(n)
}

const dlqKey = "cam:dlq"

// Message is one envelope on a queue: a job id plus an idempotency key
// assigned at enqueue time if the caller didn't supply one.
type Message struct {
	JobID          string `json:"job_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// DeadLetter is the payload recorded when a job exhausts its retries.
type DeadLetter struct {
	Error   string `json:"error"`
	Payload string `json:"payload"`
	Trace   string `json:"trace"`
}

// Queue wraps a *redis.Client with the enqueue/dequeue/DLQ contract of
// spec.md §4.7.
type Queue struct {
	client *redis.Client
}

// New connects to Redis per the given configuration, verifying
// connectivity with a Ping the way RedisCache.NewRedisCache does.
func New(cfg config.RedisConfig) (*Queue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, camerr.DependencyMissing("parse redis url: %v", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, camerr.Transient(err, "connect to redis")
	}

	return &Queue{client: client}, nil
}

// NewFromClient wraps an already-constructed client, used by tests
// against a miniredis instance.
func NewFromClient(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Health(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Enqueue appends a job id to the named queue, never blocking. A fresh
// idempotency key is assigned if idempotencyKey is empty, per spec.md
// §4.7.
func (q *Queue) Enqueue(ctx context.Context, queue Name, jobID string, idempotencyKey string) (Message, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.New().String()
	}
	msg := Message{JobID: jobID, IdempotencyKey: idempotencyKey}
	raw, err := json.Marshal(msg)
	if err != nil {
		return Message{}, camerr.Internal(err, "marshal queue message")
	}
	if err := q.client.LPush(ctx, key(queue), raw).Err(); err != nil {
		return Message{}, camerr.Transient(err, "enqueue to %s", queue)
	}
	return msg, nil
}

// Dequeue blocks up to timeout for a job on the named queue.
func (q *Queue) Dequeue(ctx context.Context, queue Name, timeout time.Duration) (*Message, error) {
	return q.popKeys(ctx, timeout, key(queue))
}

// DequeueAny performs a multi-queue blocking pop across every active
// queue in one BRPOP call: first-ready-wins fairness falls out of
// Redis's own multi-key BRPOP semantics, per spec.md §4.7.
func (q *Queue) DequeueAny(ctx context.Context, timeout time.Duration) (Name, *Message, error) {
	keys := make([]string, len(All))
	for i, n := range All {
		keys[i] = key(n)
	}
	res, err := q.client.BRPop(ctx, timeout, keys...).Result()
	if err == redis.Nil {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, camerr.Transient(err, "dequeue from active queues")
	}
	name := Name(res[0][len("cam:"):])
	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return name, nil, camerr.InvalidInput("malformed queue payload: %v", err)
	}
	return name, &msg, nil
}

func (q *Queue) popKeys(ctx context.Context, timeout time.Duration, keys ...string) (*Message, error) {
	res, err := q.client.BRPop(ctx, timeout, keys...).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, camerr.Transient(err, "dequeue")
	}
	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, camerr.InvalidInput("malformed queue payload: %v", err)
	}
	return &msg, nil
}

// PushDLQ records a terminally failed job's payload, error, and trace as
// a plain list entry — the DLQ has no blocking consumer; it is treated
// as terminal with no replay path in this repo (SPEC_FULL.md §9).
func (q *Queue) PushDLQ(ctx context.Context, errMsg, payload, trace string) error {
	dl := DeadLetter{Error: errMsg, Payload: payload, Trace: trace}
	raw, err := json.Marshal(dl)
	if err != nil {
		return camerr.Internal(err, "marshal dead letter")
	}
	if err := q.client.LPush(ctx, dlqKey, raw).Err(); err != nil {
		return camerr.Transient(err, "push to dlq")
	}
	return nil
}

func (q *Queue) Client() *redis.Client {
	return q.client
}
