package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorMatchingByCode(t *testing.T) {
	wrapped := fmt.Errorf("refresh endpoint said no: %w", ErrRefreshFailed)
	if !errors.Is(wrapped, ErrRefreshFailed) {
		t.Error("wrapped error does not match its sentinel")
	}
	if errors.Is(wrapped, ErrNoRefreshToken) {
		t.Error("wrapped error matches an unrelated sentinel")
	}

	// Two instances with the same code are interchangeable
	clone := NewAppError(ErrCodeRefreshFailed, "different message", 500)
	if !errors.Is(clone, ErrRefreshFailed) {
		t.Error("same-code errors do not match")
	}
}

func TestDoubleWrapKeepsBothSentinels(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrInvalidSession, ErrTokenExpired)
	if !errors.Is(err, ErrInvalidSession) {
		t.Error("outer sentinel lost")
	}
	if !errors.Is(err, ErrTokenExpired) {
		t.Error("inner sentinel lost")
	}
}

func TestErrorString(t *testing.T) {
	err := NewAppError(ErrCodeNotFound, "nothing here", 404)
	want := "[NOT_FOUND] nothing here"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
