package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

const (
	queueKey = "neuroflow:memory_tasks"
	// dedupTTL bounds how long an idempotency key blocks duplicate
	// deliveries of the same interaction.
	dedupTTL = 24 * time.Hour
)

// MemoryWriteTask is one deferred memory write. Chat answers are persisted
// to memory asynchronously so response latency never waits on extraction.
type MemoryWriteTask struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	SessionID     string    `json:"session_id"`
	ChatHistoryID string    `json:"chat_history_id,omitempty"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Context       string    `json:"context,omitempty"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}

// IdempotencyKey identifies the interaction independent of delivery: the
// same (user, session, question, answer) enqueued twice dedupes to one
// write.
func (t MemoryWriteTask) IdempotencyKey() string {
	h := sha256.Sum256([]byte(t.UserID + "|" + t.SessionID + "|" + t.Question + "|" + t.Answer))
	return "neuroflow:memory_tasks:done:" + hex.EncodeToString(h[:16])
}

// Queue enqueues deferred memory writes. All memory updates flow through
// here; there is no synchronous write path from the chat flow.
type Queue struct {
	rdb *goredis.Client
	log *logger.Logger
}

func NewQueue(rdb *goredis.Client, log *logger.Logger) (*Queue, error) {
	if rdb == nil {
		return nil, fmt.Errorf("tasks: redis client required")
	}
	if log == nil {
		return nil, fmt.Errorf("tasks: logger required")
	}
	return &Queue{rdb: rdb, log: log.With("component", "TaskQueue")}, nil
}

func (q *Queue) Enqueue(ctx context.Context, task MemoryWriteTask) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("tasks: marshal: %w", err)
	}
	if err := q.rdb.LPush(ctx, queueKey, payload).Err(); err != nil {
		return fmt.Errorf("tasks: enqueue: %w", err)
	}
	q.log.Debug("memory write enqueued", "task_id", task.ID, "user_id", task.UserID, "session_id", task.SessionID)
	return nil
}

// Depth reports the number of pending tasks, for health reporting.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, queueKey).Result()
}
