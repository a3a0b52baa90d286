// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, code lookup and exit status mapping

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/fsmanifest/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "missing_target_error",
			code:    errors.ErrMissingTarget,
			message: "target does not exist",
			wantStr: "[MISSING_TARGET] target does not exist",
		},
		{
			name:    "invalid_input_error",
			code:    errors.ErrInvalidInput,
			message: "invalid configuration",
			wantStr: "[INVALID_INPUT] invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrVersionMismatch, "manifest version %d, supported %v", 7, []int{2, 3})
	want := "manifest version 7, supported [2 3]"
	if err.Message != want {
		t.Errorf("Newf() message = %q, want %q", err.Message, want)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("permission denied")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrIOFailure, "write failed")

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[IO_FAILURE] write failed: permission denied"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}

		if !stderrors.Is(err, baseErr) {
			t.Error("errors.Is() should reach the wrapped error")
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrInternal, "internal error"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if err := errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"); err != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrClobberDenied, "target exists").
		WithDetail("target", "/home/alice/.bashrc").
		WithDetail("kind", "copy")

	details := errors.GetErrorDetails(err)
	if details["target"] != "/home/alice/.bashrc" {
		t.Errorf("WithDetail() target = %v", details["target"])
	}
	if details["kind"] != "copy" {
		t.Errorf("WithDetail() kind = %v", details["kind"])
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrClobberDenied, "error 1")
	err2 := errors.New(errors.ErrClobberDenied, "error 2")
	err3 := errors.New(errors.ErrIOFailure, "error 3")

	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should match on code")
	}
	if stderrors.Is(err1, err3) {
		t.Error("errors.Is() should not match different codes")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrMissingTarget, "missing"),
			code:     errors.ErrMissingTarget,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrMissingTarget, "missing"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "fmt_wrapped",
			err:      fmt.Errorf("outer: %w", errors.New(errors.ErrIOFailure, "denied")),
			code:     errors.ErrIOFailure,
			expected: true,
		},
		{
			name:     "plain_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrIOFailure,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrIOFailure,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(stderrors.New("x")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(plain) = %v, want %v", got, errors.ErrUnknown)
	}
	if got := errors.GetErrorCode(errors.New(errors.ErrDeserialization, "x")); got != errors.ErrDeserialization {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrDeserialization)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, errors.ExitOK},
		{"plain_error", stderrors.New("boom"), errors.ExitFailure},
		{"clobber_denied", errors.New(errors.ErrClobberDenied, "x"), errors.ExitFailure},
		{"missing_target", errors.New(errors.ErrMissingTarget, "x"), errors.ExitFailure},
		{"io_failure", errors.New(errors.ErrIOFailure, "x"), errors.ExitFailure},
		{"version_mismatch", errors.New(errors.ErrVersionMismatch, "x"), errors.ExitVersionMismatch},
		{"deserialization", errors.New(errors.ErrDeserialization, "x"), errors.ExitDeserialization},
		{
			name: "deserialization_under_other_code",
			err:  errors.Wrap(errors.New(errors.ErrDeserialization, "bad json"), errors.ErrIOFailure, "baseline"),
			want: errors.ExitDeserialization,
		},
		{
			name: "version_mismatch_fmt_wrapped",
			err:  fmt.Errorf("activate: %w", errors.New(errors.ErrVersionMismatch, "v9")),
			want: errors.ExitVersionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
