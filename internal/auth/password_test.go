package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("opensesame", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NoError(t, ComparePassword(hash, "opensesame"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestHashPasswordRejectsInvalidCost(t *testing.T) {
	_, err := HashPassword("opensesame", bcrypt.MaxCost+1)
	require.Error(t, err)
}
