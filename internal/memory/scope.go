package memory

import (
	"fmt"
	"strings"

	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
)

// ScopeType names one of the three isolation boundaries memories are
// partitioned under.
type ScopeType string

const (
	ScopeUser    ScopeType = "user"
	ScopeSession ScopeType = "session"
	ScopeCompany ScopeType = "company"
)

func ParseScopeType(raw string) (ScopeType, error) {
	switch ScopeType(strings.ToLower(strings.TrimSpace(raw))) {
	case ScopeUser:
		return ScopeUser, nil
	case ScopeSession:
		return ScopeSession, nil
	case ScopeCompany:
		return ScopeCompany, nil
	default:
		return "", fmt.Errorf("%w: scope type %q", apperr.ErrInvalidArgument, raw)
	}
}

// Scope is the tenant boundary for every read and write. The caller is
// responsible for supplying a correct id; nothing here enforces policy.
type Scope struct {
	Type ScopeType
	ID   string
}

func NewScope(scopeType, scopeID string) (Scope, error) {
	st, err := ParseScopeType(scopeType)
	if err != nil {
		return Scope{}, err
	}
	id := strings.TrimSpace(scopeID)
	if id == "" {
		return Scope{}, fmt.Errorf("%w: scope id required", apperr.ErrInvalidArgument)
	}
	return Scope{Type: st, ID: id}, nil
}

// Key is the composed partition identifier used for entity storage, so the
// same raw id under two scope types never collides.
func (s Scope) Key() string {
	return string(s.Type) + "_" + s.ID
}

func (s Scope) String() string {
	return string(s.Type) + ":" + s.ID
}
