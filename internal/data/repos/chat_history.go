package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/theshibabasement/neuroflow/internal/domain"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

type ChatHistoryRepo interface {
	Create(dbc dbctx.Context, row *domain.ChatHistory) (*domain.ChatHistory, error)
	ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*domain.ChatHistory, error)
	ListByUser(dbc dbctx.Context, userID string, limit int) ([]*domain.ChatHistory, error)
	MarkMemoryUpdated(dbc dbctx.Context, id uuid.UUID) error
}

type chatHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatHistoryRepo(db *gorm.DB, log *logger.Logger) ChatHistoryRepo {
	return &chatHistoryRepo{db: db, log: log.With("repo", "ChatHistoryRepo")}
}

func (r *chatHistoryRepo) Create(dbc dbctx.Context, row *domain.ChatHistory) (*domain.ChatHistory, error) {
	if row == nil {
		return nil, fmt.Errorf("%w: nil chat history row", apperr.ErrInvalidArgument)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *chatHistoryRepo) ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*domain.ChatHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.ChatHistory
	if err := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatHistoryRepo) ListByUser(dbc dbctx.Context, userID string, limit int) ([]*domain.ChatHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.ChatHistory
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatHistoryRepo) MarkMemoryUpdated(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: missing chat history id", apperr.ErrInvalidArgument)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&domain.ChatHistory{}).
		Where("id = ?", id).
		Update("memory_updated", true).Error
}
