package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/theshibabasement/neuroflow/internal/clients/flowise"
	"github.com/theshibabasement/neuroflow/internal/data/repos"
	"github.com/theshibabasement/neuroflow/internal/domain"
	"github.com/theshibabasement/neuroflow/internal/memory"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
	"github.com/theshibabasement/neuroflow/internal/tasks"
)

type ChatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	CompanyID string `json:"company_id,omitempty"`
	Question  string `json:"question"`
}

type ChatResult struct {
	Answer        string    `json:"answer"`
	SessionID     string    `json:"session_id"`
	ChatHistoryID string    `json:"chat_history_id"`
	MemoryQueued  bool      `json:"memory_queued"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChatService runs one conversational turn: gather memory contexts, ask the
// chatflow, persist the exchange, and defer the memory write to the queue.
type ChatService interface {
	Ask(ctx context.Context, req ChatRequest) (*ChatResult, error)
}

type chatService struct {
	mem     MemoryService
	flowise *flowise.Client
	repos   *repos.Repos
	queue   *tasks.Queue
	log     *logger.Logger
}

func NewChatService(mem MemoryService, fw *flowise.Client, r *repos.Repos, queue *tasks.Queue, log *logger.Logger) (ChatService, error) {
	if mem == nil || fw == nil || r == nil || queue == nil {
		return nil, fmt.Errorf("chat service: missing dependency")
	}
	return &chatService{
		mem:     mem,
		flowise: fw,
		repos:   r,
		queue:   queue,
		log:     log.With("service", "ChatService"),
	}, nil
}

func (s *chatService) Ask(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	req.Question = strings.TrimSpace(req.Question)
	if req.UserID == "" || req.SessionID == "" || req.Question == "" {
		return nil, fmt.Errorf("%w: user_id, session_id, and question are required", apperr.ErrInvalidArgument)
	}

	dbc := dbctx.Context{Ctx: ctx}
	var companyID *string
	if req.CompanyID != "" {
		companyID = &req.CompanyID
	}
	if _, err := s.repos.Users.Ensure(dbc, req.UserID, companyID); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	if _, err := s.repos.Sessions.Touch(dbc, req.SessionID, req.UserID, companyID); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}

	contexts := s.gatherContexts(ctx, req)

	answer, err := s.flowise.Predict(ctx, req.Question, flowise.PredictionVars{
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		CompanyID:      req.CompanyID,
		UserContext:    contexts.User,
		SessionContext: contexts.Session,
		CompanyContext: contexts.Company,
	})
	if err != nil {
		return nil, fmt.Errorf("chatflow prediction: %w", err)
	}

	row := &domain.ChatHistory{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Question:  req.Question,
		Answer:    answer,
	}
	if raw, marshalErr := json.Marshal(contexts); marshalErr == nil {
		row.ContextUsed = datatypes.JSON(raw)
	}
	row, err = s.repos.ChatHistory.Create(dbc, row)
	if err != nil {
		return nil, fmt.Errorf("persist chat history: %w", err)
	}

	memoryQueued := true
	if err := s.queue.Enqueue(ctx, tasks.MemoryWriteTask{
		UserID:        req.UserID,
		SessionID:     req.SessionID,
		ChatHistoryID: row.ID.String(),
		Question:      req.Question,
		Answer:        answer,
		Context:       contexts.Session,
	}); err != nil {
		// The answer is already committed; a lost memory write is degraded
		// service, not a failed turn.
		s.log.Error("memory write enqueue failed", "session_id", req.SessionID, "error", err)
		memoryQueued = false
	}

	return &ChatResult{
		Answer:        answer,
		SessionID:     req.SessionID,
		ChatHistoryID: row.ID.String(),
		MemoryQueued:  memoryQueued,
		CreatedAt:     row.CreatedAt,
	}, nil
}

type turnContexts struct {
	User    string `json:"user_context,omitempty"`
	Session string `json:"session_context,omitempty"`
	Company string `json:"company_context,omitempty"`
}

// gatherContexts pulls the three scope contexts concurrently. A failed scope
// degrades to empty; the chat turn still proceeds.
func (s *chatService) gatherContexts(ctx context.Context, req ChatRequest) turnContexts {
	var out turnContexts
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := s.mem.GetContext(gctx, string(memory.ScopeUser), req.UserID, req.Question, 0)
		if err != nil {
			s.log.Warn("user context unavailable", "user_id", req.UserID, "error", err)
			return nil
		}
		out.User = text
		return nil
	})
	g.Go(func() error {
		text, err := s.mem.GetContext(gctx, string(memory.ScopeSession), req.SessionID, req.Question, 0)
		if err != nil {
			s.log.Warn("session context unavailable", "session_id", req.SessionID, "error", err)
			return nil
		}
		out.Session = text
		return nil
	})
	if req.CompanyID != "" {
		g.Go(func() error {
			text, err := s.mem.CompanyContext(gctx, req.CompanyID)
			if err != nil {
				s.log.Warn("company context unavailable", "company_id", req.CompanyID, "error", err)
				return nil
			}
			out.Company = text
			return nil
		})
	}
	_ = g.Wait()
	return out
}
