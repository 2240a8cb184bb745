package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewMissingField("Amazon", "price")
	assert.Contains(t, err.Error(), "Amazon")
	assert.Contains(t, err.Error(), "price")
	assert.Equal(t, ErrorTypeMissingField, err.Type)
	assert.Equal(t, "price", err.Field)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeConflict, TypeOf(NewConflict("dup")))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(NewNotFound("product", "abc")))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain error")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestTypeOfWrapped(t *testing.T) {
	inner := NewTimeout("Flipkart", "navigation", nil)
	wrapped := fmt.Errorf("job failed: %w", inner)

	assert.True(t, IsTimeout(wrapped))
	assert.Equal(t, ErrorTypeTimeout, TypeOf(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewTimeout("Meesho", "element wait", cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewTimeout("Amazon", "navigation", nil).IsRetryable())
	assert.True(t, NewUpstreamBlocked("Amazon", time.Minute).IsRetryable())
	assert.True(t, NewMissingField("Amazon", "name").IsRetryable())
	assert.True(t, NewPriceParse("Amazon", "Out of stock").IsRetryable())

	assert.False(t, NewUnsupportedPlatform("https://example.com/p/1").IsRetryable())
	assert.False(t, NewConflict("dup").IsRetryable())
	assert.False(t, NewNotFound("alert", "xyz").IsRetryable())
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("product", "p1")))
	assert.False(t, IsNotFound(NewConflict("dup")))
	assert.True(t, IsConflict(NewConflict("dup")))
	assert.False(t, IsConflict(nil))
}
