package framework

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := NotFound("page not found")

	if err.Error() != "page not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "page not found")
	}
	if err.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", err.StatusCode)
	}
}

func TestError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(http.StatusInternalServerError, "fetch upstream", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match cause")
	}
	want := "fetch upstream: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAsError(t *testing.T) {
	appErr := BadRequest("bad input")
	wrapped := fmt.Errorf("stage failed: %w", appErr)

	got, ok := AsError(wrapped)
	if !ok {
		t.Fatal("AsError should recognize a wrapped *Error")
	}
	if got.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", got.StatusCode)
	}

	if _, ok := AsError(errors.New("plain")); ok {
		t.Error("AsError should reject plain errors")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{Internal("x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
