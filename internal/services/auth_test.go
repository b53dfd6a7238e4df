package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/theshibabasement/neuroflow/internal/domain"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

type fakeAPIKeyRepo struct {
	rows    map[string]*domain.APIKey
	touched []string
}

func (f *fakeAPIKeyRepo) GetByHash(dbc dbctx.Context, keyHash string) (*domain.APIKey, error) {
	if row, ok := f.rows[keyHash]; ok {
		return row, nil
	}
	return nil, fmt.Errorf("%w: api key", apperr.ErrNotFound)
}

func (f *fakeAPIKeyRepo) Create(dbc dbctx.Context, row *domain.APIKey) (*domain.APIKey, error) {
	if f.rows == nil {
		f.rows = map[string]*domain.APIKey{}
	}
	f.rows[row.KeyHash] = row
	return row, nil
}

func (f *fakeAPIKeyRepo) TouchLastUsed(dbc dbctx.Context, keyHash string) error {
	f.touched = append(f.touched, keyHash)
	return nil
}

func authTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestValidateStaticKeys(t *testing.T) {
	t.Setenv("API_KEY_SHA256", HashKey("plain-key"))
	t.Setenv("ADMIN_KEY_SHA256", HashKey("admin-key"))
	svc := NewAuthService(&fakeAPIKeyRepo{}, authTestLogger(t))

	p, err := svc.Validate(context.Background(), "plain-key")
	if err != nil {
		t.Fatalf("static key: %v", err)
	}
	if p.Admin || p.Label != "static" {
		t.Fatalf("static principal: %+v", p)
	}

	p, err = svc.Validate(context.Background(), "admin-key")
	if err != nil {
		t.Fatalf("admin key: %v", err)
	}
	if !p.Admin {
		t.Fatalf("admin principal: %+v", p)
	}
}

func TestValidateDatabaseKey(t *testing.T) {
	t.Setenv("API_KEY_SHA256", "")
	t.Setenv("ADMIN_KEY_SHA256", "")
	repo := &fakeAPIKeyRepo{rows: map[string]*domain.APIKey{
		HashKey("db-key"): {KeyHash: HashKey("db-key"), Label: "acme-staging", IsAdmin: false},
	}}
	svc := NewAuthService(repo, authTestLogger(t))

	p, err := svc.Validate(context.Background(), "db-key")
	if err != nil {
		t.Fatalf("db key: %v", err)
	}
	if p.Label != "acme-staging" || p.Admin {
		t.Fatalf("db principal: %+v", p)
	}
	if len(repo.touched) != 1 || repo.touched[0] != HashKey("db-key") {
		t.Fatalf("last_used not touched: %v", repo.touched)
	}
}

func TestValidateRejectsUnknownAndEmptyKeys(t *testing.T) {
	t.Setenv("API_KEY_SHA256", HashKey("plain-key"))
	t.Setenv("ADMIN_KEY_SHA256", "")
	svc := NewAuthService(&fakeAPIKeyRepo{}, authTestLogger(t))

	if _, err := svc.Validate(context.Background(), "wrong-key"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("unknown key: want ErrUnauthorized got=%v", err)
	}
	if _, err := svc.Validate(context.Background(), "  "); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("blank key: want ErrUnauthorized got=%v", err)
	}
	// The raw key itself must never pass; only its digest is configured.
	if _, err := svc.Validate(context.Background(), HashKey("plain-key")); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("digest used as key: want ErrUnauthorized got=%v", err)
	}
}
