package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/theshibabasement/neuroflow/internal/data/repos"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	"github.com/theshibabasement/neuroflow/internal/tasks"
)

type chatMarker struct {
	repo repos.ChatHistoryRepo
}

// NewChatMarker adapts the chat history repo to the worker's marker
// contract.
func NewChatMarker(repo repos.ChatHistoryRepo) tasks.ChatMarker {
	return &chatMarker{repo: repo}
}

func (m *chatMarker) MarkMemoryUpdated(ctx context.Context, chatHistoryID string) error {
	id, err := uuid.Parse(chatHistoryID)
	if err != nil {
		return fmt.Errorf("invalid chat history id %q: %w", chatHistoryID, err)
	}
	return m.repo.MarkMemoryUpdated(dbctx.Context{Ctx: ctx}, id)
}
