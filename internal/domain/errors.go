package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrNoImageData         = errors.New("no image data found")
	ErrInvalidRequest      = errors.New("invalid request")
)

// ProviderErrorKind classifies a failed provider call.
type ProviderErrorKind string

const (
	ProviderUnavailable       ProviderErrorKind = "unavailable"
	ProviderHTTPError         ProviderErrorKind = "http"
	ProviderMalformedResponse ProviderErrorKind = "malformed_response"
	RequestTimeout            ProviderErrorKind = "timeout"
	ProviderNetworkError      ProviderErrorKind = "network"
)

// ProviderError is the only error type returned by provider clients.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s %d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	if e.Kind == ProviderUnavailable && e.Err == nil {
		return ErrProviderUnavailable
	}
	return e.Err
}

// Retryable reports whether another attempt could succeed: 5xx and timeouts only.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case RequestTimeout:
		return true
	case ProviderHTTPError:
		return e.Status >= 500
	default:
		return false
	}
}

// Reason is a short machine-friendly label used in logs and fallback metadata.
func (e *ProviderError) Reason() string {
	switch e.Kind {
	case ProviderUnavailable:
		return "missing_api_key"
	case ProviderHTTPError:
		return fmt.Sprintf("http_%d", e.Status)
	default:
		return string(e.Kind)
	}
}

func NewUnavailable(provider string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ProviderUnavailable, Err: ErrProviderUnavailable}
}

func NewHTTPError(provider string, status int, detail string) *ProviderError {
	var err error
	if detail != "" {
		err = errors.New(detail)
	}
	return &ProviderError{Provider: provider, Kind: ProviderHTTPError, Status: status, Err: err}
}

func NewMalformed(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ProviderMalformedResponse, Err: err}
}

func NewTimeout(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: RequestTimeout, Err: err}
}

func NewNetworkError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ProviderNetworkError, Err: err}
}

// NewTransportError classifies a failed round trip as a timeout or a network
// error.
func NewTransportError(provider string, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeout(provider, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return NewTimeout(provider, err)
	}
	return NewNetworkError(provider, err)
}

// AsProviderError extracts a *ProviderError from err, if one is wrapped.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// FallbackReason labels err for logs; non-provider errors collapse to "error".
func FallbackReason(err error) string {
	if pe, ok := AsProviderError(err); ok {
		return pe.Reason()
	}
	if err == nil {
		return ""
	}
	return "error"
}
