package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)

	tok, err := ts.Issue("user-1")
	require.NoError(t, err)

	id, err := ts.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokenRejects(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)

	other, err := NewTokenService("other", time.Hour).Issue("user-1")
	require.NoError(t, err)
	expired, err := NewTokenService("secret", -time.Minute).Issue("user-1")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret": other,
		"expired":      expired,
		"garbage":      "not.a.token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Validate(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
