package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFragmentNotFound     = errors.New("fragment not found")
	ErrTaskNotFound         = errors.New("index task not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrTemporary            = errors.New("temporary failure")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	ErrStoreUnavailable     = errors.New("fragment store unavailable")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
