package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPIN(t *testing.T) {
	hash, err := HashPIN("4321", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "4321", "hash must not embed the plain PIN")

	assert.True(t, VerifyPIN(hash, "4321"))
	assert.False(t, VerifyPIN(hash, "4320"))
	assert.False(t, VerifyPIN(hash, ""))
	assert.False(t, VerifyPIN("", "4321"))
}

// The seeding tool passes the configured bcrypt cost through; the cost must
// survive into the stored hash.
func TestHashPINHonorsCost(t *testing.T) {
	hash, err := HashPIN("4321", bcrypt.MinCost+1)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestHashPINProducesUniqueSalts(t *testing.T) {
	a, err := HashPIN("4321", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPIN("4321", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each hash carries its own salt")
}
