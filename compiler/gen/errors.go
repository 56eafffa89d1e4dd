package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidDeclaration indicates a malformed annotated declaration.
	ErrInvalidDeclaration = errors.New("csrgen: invalid declaration")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("csrgen: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("csrgen: code generation failed")
)

// DeclarationError reports a declaration that cannot be generated. The
// declaration is skipped; the other declarations proceed.
type DeclarationError struct {
	Decl    string // declaration full name
	Member  string // member name (if applicable)
	Pos     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	var b strings.Builder
	b.WriteString("csrgen: ")
	if e.Pos != "" {
		b.WriteString(e.Pos)
		b.WriteString(": ")
	}
	b.WriteString("declaration ")
	b.WriteString(e.Decl)
	if e.Member != "" {
		b.WriteString(" member ")
		b.WriteString(e.Member)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DeclarationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for DeclarationError.
func (e *DeclarationError) Is(target error) bool {
	return target == ErrInvalidDeclaration
}

// NewDeclarationError creates a new DeclarationError.
func NewDeclarationError(declName, member, message string, cause error) *DeclarationError {
	return &DeclarationError{
		Decl:    declName,
		Member:  member,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("csrgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("csrgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a failure to render, format or write a file.
type GenerationError struct {
	Phase   string // "render", "format", "write", "clean"
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("csrgen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsDeclarationError reports whether the error is a DeclarationError.
func IsDeclarationError(err error) bool {
	var declErr *DeclarationError
	return errors.As(err, &declErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
