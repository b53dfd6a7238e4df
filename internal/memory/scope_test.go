package memory

import (
	"errors"
	"testing"

	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
)

func TestNewScopeNormalizesType(t *testing.T) {
	s, err := NewScope("  User ", "42")
	if err != nil {
		t.Fatalf("new scope: %v", err)
	}
	if s.Type != ScopeUser || s.ID != "42" {
		t.Fatalf("scope: %+v", s)
	}
	if s.Key() != "user_42" {
		t.Fatalf("key: got=%q", s.Key())
	}
}

func TestNewScopeRejectsBadInput(t *testing.T) {
	if _, err := NewScope("tenant", "42"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("unknown type: want ErrInvalidArgument got=%v", err)
	}
	if _, err := NewScope("user", "   "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("blank id: want ErrInvalidArgument got=%v", err)
	}
}
