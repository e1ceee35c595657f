package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestProviderErrorRetryable(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  *ProviderError
		want bool
	}{
		{name: "503", err: NewHTTPError("imagen", 503, ""), want: true},
		{name: "500", err: NewHTTPError("imagen", 500, "boom"), want: true},
		{name: "429", err: NewHTTPError("imagen", 429, ""), want: false},
		{name: "400", err: NewHTTPError("imagen", 400, ""), want: false},
		{name: "timeout", err: NewTimeout("imagen", errors.New("deadline")), want: true},
		{name: "malformed", err: NewMalformed("imagen", ErrNoImageData), want: false},
		{name: "unavailable", err: NewUnavailable("imagen"), want: false},
		{name: "network", err: NewNetworkError("imagen", errors.New("refused")), want: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.err.Retryable(); got != tc.want {
				t.Fatalf("Retryable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("concept: %w", NewUnavailable("anthropic"))
	if !errors.Is(wrapped, ErrProviderUnavailable) {
		t.Fatal("expected wrapped unavailable error to match ErrProviderUnavailable")
	}
	malformed := NewMalformed("imagen", ErrNoImageData)
	if !errors.Is(malformed, ErrNoImageData) {
		t.Fatal("expected malformed error to unwrap to ErrNoImageData")
	}
	pe, ok := AsProviderError(wrapped)
	if !ok || pe.Provider != "anthropic" {
		t.Fatalf("AsProviderError = %v, %v", pe, ok)
	}
}

func TestFallbackReason(t *testing.T) {
	if got := FallbackReason(NewHTTPError("anthropic", 529, "")); got != "http_529" {
		t.Fatalf("reason = %q, want http_529", got)
	}
	if got := FallbackReason(NewUnavailable("anthropic")); got != "missing_api_key" {
		t.Fatalf("reason = %q, want missing_api_key", got)
	}
	if got := FallbackReason(errors.New("other")); got != "error" {
		t.Fatalf("reason = %q, want error", got)
	}
	if got := FallbackReason(nil); got != "" {
		t.Fatalf("reason = %q, want empty", got)
	}
}

func TestNewTransportError(t *testing.T) {
	if got := NewTransportError("imagen", fmt.Errorf("call: %w", context.DeadlineExceeded)); got.Kind != RequestTimeout {
		t.Fatalf("kind = %q, want timeout", got.Kind)
	}
	if got := NewTransportError("imagen", errors.New("connection refused")); got.Kind != ProviderNetworkError {
		t.Fatalf("kind = %q, want network", got.Kind)
	}
}
