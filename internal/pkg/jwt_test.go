package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParsePair(t *testing.T) {
	SetSecrets("test-access", "test-refresh")

	pair, err := GeneratePair(42, 1)
	require.NoError(t, err)

	claims, err := ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, 1, claims.Role)

	rc, err := ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), rc.UserID)
	assert.NotEmpty(t, rc.ID)
}

func TestAccessAndRefreshAreNotInterchangeable(t *testing.T) {
	SetSecrets("same", "same")
	pair, err := GeneratePair(7, 0)
	require.NoError(t, err)

	_, err = ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestParseAccessRejectsGarbage(t *testing.T) {
	_, err := ParseAccess("not-a-token")
	assert.Error(t, err)
}
