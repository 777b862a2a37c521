package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "buffer not open")
		assert.Equal(t, "[NOT_FOUND] buffer not open", err.Error())
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("disk gone")
		err := Wrap(original, CodeInternal, "reload failed")
		assert.Equal(t, "[INTERNAL_ERROR] reload failed: disk gone", err.Error())
		assert.ErrorIs(t, err, original)
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid offset")
		assert.True(t, IsCode(err, CodeValidationError))
		assert.False(t, IsCode(err, CodeNotFound))
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("open: %w", New(CodeNotSupported, "not python"))
		assert.True(t, IsCode(err, CodeNotSupported))
		assert.Equal(t, CodeNotSupported, CodeOf(err))
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeNotFound, "missing"), CtxBuffer, "/tmp/a.py")
		assert.Contains(t, err.Error(), "/tmp/a.py")
		assert.True(t, IsCode(err, CodeNotFound))

		plain := AddContext(errors.New("boom"), CtxOperation, "parse")
		assert.Equal(t, CodeInternal, CodeOf(plain))
	})
}
