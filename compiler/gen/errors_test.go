package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclarationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("unknown identifier")
		err := NewDeclarationError("example.com/app.UserMapper", "Find", "invalid template", cause)
		err.Pos = "mapper.go:12:2"

		assert.Equal(t, "csrgen: mapper.go:12:2: declaration example.com/app.UserMapper member Find: invalid template: unknown identifier", err.Error())
	})

	t.Run("Error message with declaration only", func(t *testing.T) {
		err := &DeclarationError{Decl: "User"}
		assert.Equal(t, "csrgen: declaration User", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewDeclarationError("User", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is matches ErrInvalidDeclaration", func(t *testing.T) {
		err := NewDeclarationError("User", "", "", nil)
		assert.True(t, errors.Is(err, ErrInvalidDeclaration))
		assert.False(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("IsDeclarationError helper", func(t *testing.T) {
		err := NewDeclarationError("User", "Name", "test", nil)
		assert.True(t, IsDeclarationError(err))
		assert.True(t, IsDeclarationError(errors.Join(errors.New("other"), err)))
		assert.False(t, IsDeclarationError(errors.New("other")))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Dialect", "oracle", "unsupported dialect")

		assert.Contains(t, err.Error(), "csrgen: config error")
		assert.Contains(t, err.Error(), "Dialect")
		assert.Contains(t, err.Error(), "oracle")
		assert.Contains(t, err.Error(), "unsupported dialect")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Header", nil, "header cannot be empty")

		assert.Contains(t, err.Error(), "Header")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		err := NewConfigError("Workers", 0, "workers must be positive")
		assert.True(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		assert.True(t, IsConfigError(NewConfigError("Workers", nil, "missing")))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("expected ';'")
		err := NewGenerationError("format", "user_csr.go", "invalid source", cause)

		assert.Equal(t, "csrgen: generation error in phase format (file: user_csr.go): invalid source: expected ';'", err.Error())
	})

	t.Run("Error message without file", func(t *testing.T) {
		err := &GenerationError{Phase: "clean"}
		assert.Equal(t, "csrgen: generation error in phase clean", err.Error())
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewGenerationError("write", "user_csr.go", "", cause)

		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, IsGenerationError(err))
		assert.False(t, IsGenerationError(cause))
	})
}
