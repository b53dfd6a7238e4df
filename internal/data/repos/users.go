package repos

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theshibabasement/neuroflow/internal/domain"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

type UserRepo interface {
	// Ensure creates the user row on first sight; an existing row keeps its
	// fields except company_id, which is filled in if previously empty.
	Ensure(dbc dbctx.Context, userID string, companyID *string) (*domain.User, error)
	GetByID(dbc dbctx.Context, userID string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return &userRepo{db: db, log: log.With("repo", "UserRepo")}
}

func (r *userRepo) Ensure(dbc dbctx.Context, userID string, companyID *string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user_id", apperr.ErrInvalidArgument)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &domain.User{ID: userID, CompanyID: companyID}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByID(dbc, userID)
}

func (r *userRepo) GetByID(dbc dbctx.Context, userID string) (*domain.User, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var row domain.User
	if err := txx.WithContext(dbc.Ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, err
	}
	return &row, nil
}
