package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFromClient(client)
}

func TestEnqueueAssignsIdempotencyKeyWhenMissing(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	msg, err := q.Enqueue(ctx, DXF, "job-1", "")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if msg.IdempotencyKey == "" {
		t.Fatal("expected a freshly assigned idempotency key")
	}
}

func TestDequeueFIFOPerQueue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, DXF, "job-a", "k-a"); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enqueue(ctx, DXF, "job-b", "k-b"); err != nil {
		t.Fatal(err)
	}

	first, err := q.Dequeue(ctx, DXF, time.Second)
	if err != nil || first == nil {
		t.Fatalf("dequeue first: %v", err)
	}
	if first.JobID != "job-a" {
		t.Fatalf("expected FIFO order job-a first, got %s", first.JobID)
	}

	second, err := q.Dequeue(ctx, DXF, time.Second)
	if err != nil || second == nil {
		t.Fatalf("dequeue second: %v", err)
	}
	if second.JobID != "job-b" {
		t.Fatalf("expected job-b second, got %s", second.JobID)
	}
}

func TestDequeueAnyFindsMessageOnAnyActiveQueue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, Drilling, "job-x", "k-x"); err != nil {
		t.Fatal(err)
	}

	name, msg, err := q.DequeueAny(ctx, time.Second)
	if err != nil {
		t.Fatalf("dequeue any: %v", err)
	}
	if name != Drilling || msg == nil || msg.JobID != "job-x" {
		t.Fatalf("expected to find job-x on drilling queue, got queue=%s msg=%+v", name, msg)
	}
}

func TestDequeueAnyReturnsNilOnTimeout(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	name, msg, err := q.DequeueAny(ctx, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != nil || name != "" {
		t.Fatalf("expected no message on an empty queue set, got queue=%s msg=%+v", name, msg)
	}
}

func TestPushDLQRecordsErrorAndPayload(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if err := q.PushDLQ(ctx, "boom", `{"job_id":"job-z"}`, "stacktrace"); err != nil {
		t.Fatalf("push dlq: %v", err)
	}

	raw, err := q.client.LPop(ctx, dlqKey).Result()
	if err != nil {
		t.Fatalf("lpop dlq: %v", err)
	}
	if raw == "" {
		t.Fatal("expected a dead letter payload")
	}
}
