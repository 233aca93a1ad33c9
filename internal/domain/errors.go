package domain

import "fmt"

var (
	ErrNotFound          = errString("not found")
	ErrDuplicateDomain   = errString("domain already tracked for brand")
	ErrInvalidTransition = errString("invalid status transition")
	ErrInvalidInput      = errString("invalid input")
	ErrProviderAuth      = errString("search provider rejected credentials")
)

type errString string

func (e errString) Error() string { return string(e) }

// TransitionError reports an illegal imposter status move.
type TransitionError struct {
	From ImposterStatus
	To   ImposterStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ProviderError wraps a single failed page fetch.
type ProviderError struct {
	Page   int // 1-based
	Offset int
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("page %d (offset %d): %v", e.Page, e.Offset, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Invalid builds an ErrInvalidInput with context.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
