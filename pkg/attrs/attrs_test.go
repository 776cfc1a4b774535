package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	list := []any{"user_id", "u1", "count", 3, "dangling"}

	assert.Equal(t, "u1", ExtractString(list, "user_id"))
	assert.Empty(t, ExtractString(list, "count"), "non-string value")
	assert.Empty(t, ExtractString(list, "dangling"), "key without value")
	assert.Empty(t, ExtractString(nil, "user_id"))
}

func TestFirstString(t *testing.T) {
	list := []any{"ip", "10.0.0.1", "email", "a***@b.com", "subject", ""}

	assert.Equal(t, "a***@b.com", FirstString(list, "subject", "email", "ip"))
	assert.Equal(t, "10.0.0.1", FirstString(list, "ip", "email"))
	assert.Empty(t, FirstString(list, "user_id"))
}
