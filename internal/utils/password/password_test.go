package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	match, err := Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("same input")
	require.NoError(t, err)
	second, err := Hash("same input")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := Verify("anything", "not-an-encoded-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = Verify("anything", "$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}
