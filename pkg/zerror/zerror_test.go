package zerror_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmtuan/stockroom/pkg/zerror"
)

func TestZError(t *testing.T) {
	t.Run("Should carry status, code and message", func(t *testing.T) {
		err := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

		assert.Equal(t, zerror.StatusNotFound, err.Status())
		assert.Equal(t, "PRODUCT_NOT_FOUND", err.Code())
		assert.Equal(t, "product not found", err.Msg())
		assert.Contains(t, err.Error(), "PRODUCT_NOT_FOUND")
	})

	t.Run("Should copy on WithData and keep the base reusable", func(t *testing.T) {
		base := zerror.NewConflict("DUPLICATE_PRODUCT_NAME", "duplicate name")

		derived := base.WithData("name", "Keyboard")
		assert.Empty(t, base.Data())
		assert.Equal(t, "Keyboard", derived.Data()["name"])

		again := derived.WithData("attempt", 2)
		assert.Len(t, derived.Data(), 1)
		assert.Len(t, again.Data(), 2)
	})

	t.Run("Should unwrap to the parent error", func(t *testing.T) {
		parent := errors.New("row not found")
		err := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found").WrapParent(parent)

		require.True(t, errors.Is(&err, parent))
		assert.Contains(t, err.Error(), "row not found")
	})

	t.Run("Should be extractable with errors.As", func(t *testing.T) {
		wrapped := zerror.NewValidationFailed("VALIDATION_FAILED", "validation error").WithData("field", "name")

		var zErr zerror.ZError
		require.True(t, errors.As(wrapped, &zErr))
		assert.Equal(t, "VALIDATION_FAILED", zErr.Code())
	})
}
