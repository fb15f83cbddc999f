package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/ravigill3969/textgen-quota/repositories"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrQuotaExhausted     = errors.New("api call quota exhausted")
	ErrUpstream           = errors.New("text generation failed")
	ErrUpstreamTimeout    = errors.New("text generation timed out")
	ErrBillingDisabled    = errors.New("billing is not configured")
)

// ValidationError lists the offending fields. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// storeError maps repository sentinels onto service sentinels and passes
// anything else through.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return ErrConflict
	case errors.Is(err, repositories.ErrProtected):
		return ErrForbidden
	default:
		return err
	}
}
