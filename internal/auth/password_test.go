package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("linecrew#2025")
	require.NoError(t, err)
	assert.NotEqual(t, "linecrew#2025", hash)

	assert.True(t, VerifyPassword(hash, "linecrew#2025"))
	assert.False(t, VerifyPassword(hash, "linecrew#2024"))
	assert.False(t, VerifyPassword("", "linecrew#2025"))
}
