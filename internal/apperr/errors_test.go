package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("Single message", func(t *testing.T) {
		err := Field("username", "The username has already been taken.")
		assert.Equal(t, "The username has already been taken.", err.Error())
		assert.False(t, err.Empty())
	})

	t.Run("Several messages", func(t *testing.T) {
		err := NewValidationError().
			Add("title", "The title field is required.").
			Add("body", "The body field is required.").
			Add("body", "The body field must be a string.")
		assert.Equal(t, "The body field is required. (and 2 more errors)", err.Error())
	})

	t.Run("Unwrap through fmt wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("register: %w", Field("username", "bad"))
		ve, ok := AsValidation(wrapped)
		assert.True(t, ok)
		assert.Equal(t, []string{"bad"}, ve.Fields["username"])

		_, ok = AsValidation(ErrForbidden)
		assert.False(t, ok)
	})
}
