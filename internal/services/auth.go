package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/theshibabasement/neuroflow/internal/data/repos"
	"github.com/theshibabasement/neuroflow/internal/pkg/dbctx"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/envutil"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

// Principal is an authenticated API caller.
type Principal struct {
	Label string
	Admin bool
}

type AuthService interface {
	// Validate checks a raw API key against the configured static hashes
	// and the api_keys table. Only sha256 digests are ever stored or
	// compared.
	Validate(ctx context.Context, rawKey string) (*Principal, error)
}

type authService struct {
	apiKeyHash   string
	adminKeyHash string
	apiKeys      repos.APIKeyRepo
	log          *logger.Logger
}

func NewAuthService(apiKeys repos.APIKeyRepo, log *logger.Logger) AuthService {
	return &authService{
		apiKeyHash:   strings.ToLower(envutil.Get("API_KEY_SHA256", "")),
		adminKeyHash: strings.ToLower(envutil.Get("ADMIN_KEY_SHA256", "")),
		apiKeys:      apiKeys,
		log:          log.With("service", "AuthService"),
	}
}

func HashKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Validate(ctx context.Context, rawKey string) (*Principal, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, fmt.Errorf("%w: missing api key", apperr.ErrUnauthorized)
	}
	providedHash := HashKey(rawKey)

	if s.adminKeyHash != "" && hashesEqual(providedHash, s.adminKeyHash) {
		return &Principal{Label: "admin", Admin: true}, nil
	}
	if s.apiKeyHash != "" && hashesEqual(providedHash, s.apiKeyHash) {
		return &Principal{Label: "static"}, nil
	}

	if s.apiKeys != nil {
		row, err := s.apiKeys.GetByHash(dbctx.Context{Ctx: ctx}, providedHash)
		if err == nil {
			if touchErr := s.apiKeys.TouchLastUsed(dbctx.Context{Ctx: ctx}, providedHash); touchErr != nil {
				s.log.Warn("api key last_used update failed", "error", touchErr)
			}
			return &Principal{Label: row.Label, Admin: row.IsAdmin}, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown api key", apperr.ErrUnauthorized)
}

func hashesEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
