package domain

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is to test an error's category.
var (
	ErrConfig   = errors.New("config error")
	ErrSchema   = errors.New("schema error")
	ErrNotFound = errors.New("not found")
	ErrIO       = errors.New("io error")
)

// Error carries a category, the file it concerns (if any) and the cause
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ConfigErrorf builds a configuration error
func ConfigErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrConfig, Err: fmt.Errorf(format, args...)}
}

// SchemaErrorf builds a schema error for the table at path
func SchemaErrorf(path, format string, args ...interface{}) error {
	return &Error{Kind: ErrSchema, Path: path, Err: fmt.Errorf(format, args...)}
}

// NotFound builds a not-found error for path
func NotFound(path string, err error) error {
	return &Error{Kind: ErrNotFound, Path: path, Err: err}
}

// IOError builds a read/write failure for path
func IOError(path string, err error) error {
	return &Error{Kind: ErrIO, Path: path, Err: err}
}

// ExitCode maps an error to the process exit code for its category
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfig):
		return 2
	case errors.Is(err, ErrSchema):
		return 3
	case errors.Is(err, ErrNotFound):
		return 4
	case errors.Is(err, ErrIO):
		return 5
	default:
		return 1
	}
}
