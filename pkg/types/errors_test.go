package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrInvalidPoolSize", ErrInvalidPoolSize},
		{"ErrWakerClosed", ErrWakerClosed},
		{"ErrUnsupportedConfigFormat", ErrUnsupportedConfigFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("expected error, got nil")
			}
			if tt.err.Error() == "" {
				t.Errorf("expected non-empty error message")
			}
		})
	}
}

func TestTaskPanicError(t *testing.T) {
	t.Run("String Panic Value", func(t *testing.T) {
		panicErr := NewTaskPanicError(3, "boom", []byte("goroutine 1 [running]"))

		expectedMsg := "task panicked on worker 3: boom"
		if panicErr.Error() != expectedMsg {
			t.Errorf("expected message %q, got %q", expectedMsg, panicErr.Error())
		}

		if panicErr.Unwrap() != nil {
			t.Errorf("expected nil unwrap for non-error panic value")
		}

		if !strings.Contains(panicErr.Stack, "goroutine") {
			t.Errorf("expected stack to be preserved, got %q", panicErr.Stack)
		}
	})

	t.Run("Error Panic Value", func(t *testing.T) {
		cause := errors.New("underlying failure")
		panicErr := NewTaskPanicError(0, cause, nil)

		if !errors.Is(panicErr, cause) {
			t.Errorf("expected errors.Is to match the panic value")
		}
	})

	t.Run("Wrapped Detection", func(t *testing.T) {
		wrapped := fmt.Errorf("batch failed: %w", NewTaskPanicError(1, 42, nil))

		if !IsTaskPanic(wrapped) {
			t.Errorf("expected IsTaskPanic to see through wrapping")
		}

		if IsTaskPanic(errors.New("plain")) {
			t.Errorf("expected IsTaskPanic to reject a plain error")
		}
	})
}
