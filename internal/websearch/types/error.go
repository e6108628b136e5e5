package types

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidProviderID   = errors.New("invalid provider ID")
	ErrInvalidProviderName = errors.New("invalid provider name")
	ErrInvalidAPIHost      = errors.New("invalid API host")
	ErrMissingAPIKey       = errors.New("missing API key")
	ErrMissingEngineID     = errors.New("missing search engine ID")
	ErrMissingBasicAuthPassword = errors.New("missing basic auth password")

	// Request errors
	ErrEmptyQuery   = errors.New("empty search query")
	ErrQueryTooLong = errors.New("query too long")

	// Provider errors
	ErrProviderNotFound  = errors.New("provider not found")
	ErrProviderTimeout   = errors.New("provider timeout")
	ErrNoProvidersConfigured = errors.New("no search providers configured")

	// Response errors
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// ProviderError wraps provider-specific errors. A ProviderError is
// fatal for the request that produced it: a provider never returns
// partial results.
type ProviderError struct {
	Provider ProviderID
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
