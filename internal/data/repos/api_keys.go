package repos

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/theshibabasement/neuroflow/internal/domain"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

type APIKeyRepo interface {
	GetByHash(dbc dbctx.Context, keyHash string) (*domain.APIKey, error)
	Create(dbc dbctx.Context, row *domain.APIKey) (*domain.APIKey, error)
	TouchLastUsed(dbc dbctx.Context, keyHash string) error
}

type apiKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAPIKeyRepo(db *gorm.DB, log *logger.Logger) APIKeyRepo {
	return &apiKeyRepo{db: db, log: log.With("repo", "APIKeyRepo")}
}

func (r *apiKeyRepo) GetByHash(dbc dbctx.Context, keyHash string) (*domain.APIKey, error) {
	if keyHash == "" {
		return nil, fmt.Errorf("%w: missing key hash", apperr.ErrInvalidArgument)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var row domain.APIKey
	if err := txx.WithContext(dbc.Ctx).First(&row, "key_hash = ?", keyHash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: api key", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &row, nil
}

func (r *apiKeyRepo) Create(dbc dbctx.Context, row *domain.APIKey) (*domain.APIKey, error) {
	if row == nil || row.KeyHash == "" {
		return nil, fmt.Errorf("%w: missing key hash", apperr.ErrInvalidArgument)
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

func (r *apiKeyRepo) TouchLastUsed(dbc dbctx.Context, keyHash string) error {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	now := time.Now().UTC()
	return txx.WithContext(dbc.Ctx).
		Model(&domain.APIKey{}).
		Where("key_hash = ?", keyHash).
		Update("last_used_at", now).Error
}
