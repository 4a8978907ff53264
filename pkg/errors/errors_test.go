package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeFileRead, cause, "read main.py")

	if err.Code != ErrCodeFileRead {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFileRead)
	}

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "FILE_READ: read main.py: permission denied"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidEncoding, "test"),
			code:     ErrCodeInvalidEncoding,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "outermost code wins",
			err:      Wrap(ErrCodeDownloadFailed, New(ErrCodeInstallerFailed, "inner"), "outer"),
			code:     ErrCodeDownloadFailed,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidPackage, "x")); got != ErrCodeInvalidPackage {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInvalidPackage)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"with cause", Wrap(ErrCodeFileRead, errors.New("EOF"), "read a.py"), "read a.py: EOF"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCodeInvalid(t *testing.T) {
	for _, c := range []Code{ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidPackage, ErrCodeInvalidFilename, ErrCodeInvalidEncoding, ErrCodeInvalidScript} {
		if !c.Invalid() {
			t.Errorf("%s.Invalid() = false", c)
		}
	}
	for _, c := range []Code{ErrCodeFileRead, ErrCodeDownloadFailed, ErrCodeNetwork, ErrCodeInternal, ""} {
		if c.Invalid() {
			t.Errorf("%q.Invalid() = true", c)
		}
	}
}
