package services

import (
	"context"
	"fmt"

	"github.com/theshibabasement/neuroflow/internal/memory"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

const (
	// companyContextQuery is the fixed retrieval query used when pulling
	// company-wide background for a chat turn.
	companyContextQuery = "company context information"
	companyContextLimit = 20
)

// MemoryService validates scope input and delegates to the retrieval core.
type MemoryService interface {
	GetContext(ctx context.Context, scopeType, scopeID, query string, limit int) (string, error)
	AddMemory(ctx context.Context, scopeType, scopeID, question, answer, conversationContext string) error
	ClearScope(ctx context.Context, scopeType, scopeID string) (int64, error)
	KnowledgeGraph(ctx context.Context, scopeType, scopeID string, limit int) (*memory.GraphSnapshot, error)
	Stats(ctx context.Context, scopeType, scopeID string) (*memory.ScopeStats, error)
	CompanyContext(ctx context.Context, companyID string) (string, error)
}

type memoryService struct {
	core *memory.Service
	log  *logger.Logger
}

func NewMemoryService(core *memory.Service, log *logger.Logger) (MemoryService, error) {
	if core == nil {
		return nil, fmt.Errorf("memory service: core required")
	}
	return &memoryService{core: core, log: log.With("service", "MemoryService")}, nil
}

func (s *memoryService) GetContext(ctx context.Context, scopeType, scopeID, query string, limit int) (string, error) {
	scope, err := memory.NewScope(scopeType, scopeID)
	if err != nil {
		return "", err
	}
	return s.core.GetContext(ctx, scope, query, limit)
}

func (s *memoryService) AddMemory(ctx context.Context, scopeType, scopeID, question, answer, conversationContext string) error {
	scope, err := memory.NewScope(scopeType, scopeID)
	if err != nil {
		return err
	}
	return s.core.AddMemory(ctx, scope, question, answer, conversationContext)
}

func (s *memoryService) ClearScope(ctx context.Context, scopeType, scopeID string) (int64, error) {
	scope, err := memory.NewScope(scopeType, scopeID)
	if err != nil {
		return 0, err
	}
	return s.core.ClearScope(ctx, scope)
}

func (s *memoryService) KnowledgeGraph(ctx context.Context, scopeType, scopeID string, limit int) (*memory.GraphSnapshot, error) {
	scope, err := memory.NewScope(scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	return s.core.KnowledgeGraph(ctx, scope, limit)
}

func (s *memoryService) Stats(ctx context.Context, scopeType, scopeID string) (*memory.ScopeStats, error) {
	scope, err := memory.NewScope(scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	return s.core.Stats(ctx, scope)
}

func (s *memoryService) CompanyContext(ctx context.Context, companyID string) (string, error) {
	scope, err := memory.NewScope(string(memory.ScopeCompany), companyID)
	if err != nil {
		return "", err
	}
	return s.core.GetContext(ctx, scope, companyContextQuery, companyContextLimit)
}
