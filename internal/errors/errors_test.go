package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("WrapPreservesErrorChain", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "user lookup failed")

		assert.Error(t, wrapped)
		assert.True(t, Is(wrapped, ErrNotFound))
		assert.Equal(t, "user lookup failed: not found", wrapped.Error())
	})

	t.Run("WrapNilReturnsNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})

	t.Run("DoubleWrapStillMatchesSentinel", func(t *testing.T) {
		inner := Wrap(ErrUnauthorized, "token expired")
		outer := Wrap(inner, "refresh rejected")

		assert.True(t, Is(outer, ErrUnauthorized))
	})
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrSecondFactorRequired,
		ErrUnavailable,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), fmt.Sprintf("%v should not match %v", a, b))
		}
	}
}
