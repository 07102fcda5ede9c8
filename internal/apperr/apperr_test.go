package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromUnwrapsThroughChain(t *testing.T) {
	base := NotFound("chamber")
	wrapped := fmt.Errorf("loading detail view: %w", base)

	got := From(wrapped)
	if got == nil {
		t.Fatalf("From: want taxonomy error, got nil")
	}
	if got.Status != http.StatusNotFound || got.Code != CodeNotFound {
		t.Fatalf("From: got status=%d code=%q", got.Status, got.Code)
	}
}

func TestFromPlainError(t *testing.T) {
	if got := From(errors.New("disk on fire")); got != nil {
		t.Fatalf("From plain error: want nil, got %+v", got)
	}
	if got := From(nil); got != nil {
		t.Fatalf("From nil: want nil, got %+v", got)
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("saving: %w", Overfull("abc"))
	if !IsCode(err, CodeOverfull) {
		t.Fatalf("IsCode: want true for overfull chain")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("IsCode: want false for mismatched code")
	}
	if IsCode(errors.New("plain"), CodeOverfull) {
		t.Fatalf("IsCode: want false for plain error")
	}
}

func TestInvalidCredentialsMessageIsStable(t *testing.T) {
	// Both login failure paths return this constructor; the message must not
	// vary or callers could distinguish them.
	if InvalidCredentials().Error() != InvalidCredentials().Error() {
		t.Fatalf("InvalidCredentials message is not stable")
	}
}
