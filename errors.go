package csr

import (
	"errors"
	"fmt"
)

// Standard sentinel errors of generated runtime code.
var (
	// ErrMissingValue is returned when a required request value is absent.
	ErrMissingValue = errors.New("csr: missing required value")

	// ErrInvalidValue is returned when a request value cannot be converted
	// to the declared parameter type.
	ErrInvalidValue = errors.New("csr: invalid value")

	// ErrNotRegistered is returned when no factory is registered for a key.
	ErrNotRegistered = errors.New("csr: no factory registered")

	// ErrNoConnector is returned by Registry.Conn when no connection provider is set.
	ErrNoConnector = errors.New("csr: no connection provider")
)

// MissingValueError reports a required parameter without a value.
type MissingValueError struct {
	Name string
}

// Error returns the error string.
func (e *MissingValueError) Error() string {
	return fmt.Sprintf("csr: %s is required", e.Name)
}

// Is reports whether the target error matches MissingValueError.
// This allows errors.Is(err, ErrMissingValue) to return true.
func (e *MissingValueError) Is(err error) bool {
	return err == ErrMissingValue
}

// NewMissingValueError returns a new MissingValueError for the parameter.
func NewMissingValueError(name string) *MissingValueError {
	return &MissingValueError{Name: name}
}

// IsMissingValue returns true if the error is a MissingValueError.
func IsMissingValue(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingValueError
	return errors.As(err, &e) || errors.Is(err, ErrMissingValue)
}

// InvalidValueError reports a parameter whose text does not convert to
// its declared type.
type InvalidValueError struct {
	Name  string
	Value string
	Type  string
	Cause error
}

// Error returns the error string.
func (e *InvalidValueError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("csr: %s: invalid %s value %q", e.Name, e.Type, e.Value)
	}
	return fmt.Sprintf("csr: %s: invalid value %q", e.Name, e.Value)
}

// Unwrap returns the conversion error.
func (e *InvalidValueError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches InvalidValueError.
func (e *InvalidValueError) Is(err error) bool {
	return err == ErrInvalidValue
}

// NewInvalidValueError returns a new InvalidValueError.
func NewInvalidValueError(name, value, typ string, cause error) *InvalidValueError {
	return &InvalidValueError{Name: name, Value: value, Type: typ, Cause: cause}
}

// IsInvalidValue returns true if the error is an InvalidValueError.
func IsInvalidValue(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidValueError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidValue)
}

// ResolveError reports a registry key that could not be resolved.
type ResolveError struct {
	Key   string
	Cause error
}

// Error returns the error string.
func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("csr: resolve %s: %v", e.Key, e.Cause)
	}
	return fmt.Sprintf("csr: resolve %s: %v", e.Key, ErrNotRegistered)
}

// Unwrap returns the underlying error.
func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches an unregistered key.
func (e *ResolveError) Is(err error) bool {
	return e.Cause == nil && err == ErrNotRegistered
}

// IsNotRegistered returns true if err reports a key without factory.
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}
