package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager([]byte("secret"), time.Minute, time.Hour)

	tok, err := m.MakeAccess("blog@gmail.net")
	require.NoError(t, err)

	sub, err := m.ParseAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "blog@gmail.net", sub)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	m := NewManager([]byte("secret"), time.Minute, time.Hour)

	refresh, err := m.MakeRefresh("u")
	require.NoError(t, err)
	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrWrongType)

	access, err := m.MakeAccess("u")
	require.NoError(t, err)
	_, err = m.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestExpiredAndForeignTokens(t *testing.T) {
	m := NewManager([]byte("secret"), time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := m.MakeAccess("u")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccess(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager([]byte("other"), time.Minute, time.Hour)
	foreign, err := other.MakeAccess("u")
	require.NoError(t, err)
	_, err = m.ParseAccess(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
