package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized indicates a question was asked before any index was built.
	ErrNotInitialized = errors.New("conversation not initialized")

	// ErrNoDocuments indicates a process action was triggered without any files.
	ErrNoDocuments = errors.New("no documents supplied")

	// ErrNoText indicates the supplied documents yielded no extractable text.
	ErrNoText = errors.New("no text extracted")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document media type has no extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates a provider rejected the request due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrSessionNotFound indicates an unknown or ended session.
	ErrSessionNotFound = errors.New("session not found")
)

// ProviderErrorKind classifies failures returned by embedding and completion providers.
type ProviderErrorKind int

const (
	KindGeneric ProviderErrorKind = iota
	KindRateLimited
)

func (k ProviderErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	default:
		return "generic"
	}
}

// ProviderError is returned by provider adapters. Callers classify it with
// errors.Is(err, ErrRateLimited) or by inspecting Kind.
type ProviderError struct {
	Provider   string
	Operation  string
	Kind       ProviderErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Provider, e.Operation, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Operation, msg)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports rate-limited provider errors as ErrRateLimited.
func (e *ProviderError) Is(target error) bool {
	return e != nil && target == ErrRateLimited && e.Kind == KindRateLimited
}

// IsRateLimited reports whether err carries a rate-limit classification.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
