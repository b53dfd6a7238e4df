package repos

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theshibabasement/neuroflow/internal/domain"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

type SessionRepo interface {
	// Touch creates the session on first sight and advances last_active_at
	// on every call.
	Touch(dbc dbctx.Context, sessionID, userID string, companyID *string) (*domain.Session, error)
	GetByID(dbc dbctx.Context, sessionID string) (*domain.Session, error)
	ListByUser(dbc dbctx.Context, userID string, limit int) ([]*domain.Session, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, log *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: log.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Touch(dbc dbctx.Context, sessionID, userID string, companyID *string) (*domain.Session, error) {
	if sessionID == "" || userID == "" {
		return nil, fmt.Errorf("%w: missing session_id or user_id", apperr.ErrInvalidArgument)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &domain.Session{
		ID:           sessionID,
		UserID:       userID,
		CompanyID:    companyID,
		LastActiveAt: time.Now().UTC(),
	}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_active_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByID(dbc, sessionID)
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, sessionID string) (*domain.Session, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var row domain.Session
	if err := txx.WithContext(dbc.Ctx).First(&row, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %s", apperr.ErrNotFound, sessionID)
		}
		return nil, err
	}
	return &row, nil
}

func (r *sessionRepo) ListByUser(dbc dbctx.Context, userID string, limit int) ([]*domain.Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Session
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("last_active_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
