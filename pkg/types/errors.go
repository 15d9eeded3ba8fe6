// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrInvalidPoolSize indicates a non-positive worker count
	ErrInvalidPoolSize = errors.New("pool size must be positive")

	// ErrWakerClosed indicates a wait on a released wakeup primitive
	ErrWakerClosed = errors.New("waker is closed")

	// ErrUnsupportedConfigFormat indicates a config file with an unknown extension
	ErrUnsupportedConfigFormat = errors.New("unsupported config format")
)

// TaskPanicError represents a panic recovered while a worker executed a task
type TaskPanicError struct {
	// WorkerID is the worker that executed the task
	WorkerID int

	// Value is the value passed to panic
	Value interface{}

	// Stack is the goroutine stack at the time of the panic
	Stack string
}

// Error implements the error interface
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task panicked on worker %d: %v", e.WorkerID, e.Value)
}

// Unwrap returns the panic value if it is an error
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// NewTaskPanicError creates a new TaskPanicError
func NewTaskPanicError(workerID int, value interface{}, stack []byte) *TaskPanicError {
	return &TaskPanicError{
		WorkerID: workerID,
		Value:    value,
		Stack:    string(stack),
	}
}

// IsTaskPanic reports whether err carries a recovered task panic
func IsTaskPanic(err error) bool {
	var panicErr *TaskPanicError
	return errors.As(err, &panicErr)
}
