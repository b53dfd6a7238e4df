package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/theshibabasement/neuroflow/internal/memory"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

// ChatMarker flags a chat history row once its memory write landed.
type ChatMarker interface {
	MarkMemoryUpdated(ctx context.Context, chatHistoryID string) error
}

// Worker drains the memory write queue. Each task writes the interaction
// into the user scope and, when a session id is present, the session scope.
// Duplicate deliveries are dropped on the idempotency key; the entity and
// relationship merge semantics absorb any duplicates that slip through.
type Worker struct {
	rdb        *goredis.Client
	mem        *memory.Service
	marker     ChatMarker
	log        *logger.Logger
	maxRetries int
}

func NewWorker(rdb *goredis.Client, mem *memory.Service, marker ChatMarker, log *logger.Logger) (*Worker, error) {
	if rdb == nil {
		return nil, fmt.Errorf("tasks: redis client required")
	}
	if mem == nil {
		return nil, fmt.Errorf("tasks: memory service required")
	}
	if log == nil {
		return nil, fmt.Errorf("tasks: logger required")
	}
	return &Worker{
		rdb:        rdb,
		mem:        mem,
		marker:     marker,
		log:        log.With("component", "MemoryWorker"),
		maxRetries: 3,
	}, nil
}

// Run blocks until ctx is cancelled, popping and processing tasks one at a
// time.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("memory worker started")
	for {
		if err := ctx.Err(); err != nil {
			w.log.Info("memory worker stopping")
			return err
		}

		res, err := w.rdb.BRPop(ctx, 5*time.Second, queueKey).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				w.log.Info("memory worker stopping")
				return ctx.Err()
			}
			w.log.Warn("queue pop failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var task MemoryWriteTask
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			w.log.Error("dropping malformed task payload", "error", err)
			continue
		}
		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task MemoryWriteTask) {
	dedupKey := task.IdempotencyKey()
	acquired, err := w.rdb.SetNX(ctx, dedupKey, task.ID, dedupTTL).Result()
	if err != nil {
		w.log.Warn("idempotency check failed, processing anyway", "task_id", task.ID, "error", err)
	} else if !acquired {
		w.log.Debug("duplicate task skipped", "task_id", task.ID)
		return
	}

	if err := w.withRetries(ctx, task); err != nil {
		w.log.Error("memory write task failed", "task_id", task.ID, "error", err)
		// Release the key so a later redelivery can retry the write.
		_ = w.rdb.Del(context.WithoutCancel(ctx), dedupKey).Err()
		return
	}

	if w.marker != nil && task.ChatHistoryID != "" {
		if err := w.marker.MarkMemoryUpdated(ctx, task.ChatHistoryID); err != nil {
			w.log.Warn("chat history flag update failed", "chat_history_id", task.ChatHistoryID, "error", err)
		}
	}
	w.log.Info("memory write task done", "task_id", task.ID, "user_id", task.UserID, "session_id", task.SessionID)
}

func (w *Worker) withRetries(ctx context.Context, task MemoryWriteTask) error {
	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = w.write(ctx, task)
		if lastErr == nil {
			return nil
		}
		if attempt == w.maxRetries {
			break
		}
		w.log.Warn("memory write retrying",
			"task_id", task.ID,
			"attempt", attempt+1,
			"max_retries", w.maxRetries,
			"error", lastErr,
		)
		time.Sleep(backoff)
		backoff *= 2
	}
	return lastErr
}

func (w *Worker) write(ctx context.Context, task MemoryWriteTask) error {
	if task.UserID != "" {
		scope := memory.Scope{Type: memory.ScopeUser, ID: task.UserID}
		if err := w.mem.AddMemory(ctx, scope, task.Question, task.Answer, task.Context); err != nil {
			return fmt.Errorf("user scope: %w", err)
		}
	}
	if task.SessionID != "" {
		scope := memory.Scope{Type: memory.ScopeSession, ID: task.SessionID}
		if err := w.mem.AddMemory(ctx, scope, task.Question, task.Answer, task.Context); err != nil {
			return fmt.Errorf("session scope: %w", err)
		}
	}
	return nil
}
