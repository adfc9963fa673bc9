package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	err := NewError(CodeNotFound, "no value stored for key \"a\"")

	if !IsNotFound(err) {
		t.Errorf("Expected IsNotFound to match")
	}
	if IsTypeMismatch(err) || IsBackendUnavailable(err) {
		t.Errorf("Predicates must only match their own code")
	}

	// predicates see through wrapping
	wrapped := fmt.Errorf("loading session: %w", err)
	if !IsNotFound(wrapped) {
		t.Errorf("Expected IsNotFound to match a wrapped error")
	}

	// foreign errors never match
	if IsNotFound(errors.New("no value stored")) {
		t.Errorf("Predicates must not match foreign errors")
	}
	if IsNotFound(nil) {
		t.Errorf("Predicates must not match nil")
	}
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{CodeInternal, "Internal"},
		{CodeNotFound, "NotFound"},
		{CodeTypeMismatch, "TypeMismatch"},
		{CodeBackendUnavailable, "BackendUnavailable"},
		{CodeUnsupportedOperation, "UnsupportedOperation"},
		{Code(999), "Unknown"},
	}

	for _, c := range cases {
		if got := c.code.String(); got != c.want {
			t.Errorf("Code(%d).String() = %q, want %q", c.code, got, c.want)
		}
	}

	err := NewError(CodeTypeMismatch, "key \"a\" holds raw bytes")
	if msg := err.Error(); msg != `StorageError (code TypeMismatch): key "a" holds raw bytes` {
		t.Errorf("Unexpected error message %q", msg)
	}
}
