package repos

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theshibabasement/neuroflow/internal/domain"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

type CompanyRepo interface {
	Upsert(dbc dbctx.Context, companyID, name string, settings datatypes.JSON) (*domain.Company, error)
	GetByID(dbc dbctx.Context, companyID string) (*domain.Company, error)
	List(dbc dbctx.Context, limit int) ([]*domain.Company, error)
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, log *logger.Logger) CompanyRepo {
	return &companyRepo{db: db, log: log.With("repo", "CompanyRepo")}
}

func (r *companyRepo) Upsert(dbc dbctx.Context, companyID, name string, settings datatypes.JSON) (*domain.Company, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: missing company_id", apperr.ErrInvalidArgument)
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &domain.Company{ID: companyID, Name: name, Settings: settings}
	if err := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "settings", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByID(dbc, companyID)
}

func (r *companyRepo) GetByID(dbc dbctx.Context, companyID string) (*domain.Company, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var row domain.Company
	if err := txx.WithContext(dbc.Ctx).First(&row, "company_id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company %s", apperr.ErrNotFound, companyID)
		}
		return nil, err
	}
	return &row, nil
}

func (r *companyRepo) List(dbc dbctx.Context, limit int) ([]*domain.Company, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Company
	if err := txx.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
