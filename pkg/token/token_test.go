package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", "storefront", time.Hour)
	raw, err := m.Issue("u1", Claims{Email: "a@example.com", Role: "ADMIN"})
	require.NoError(t, err)

	c, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID())
	assert.Equal(t, "ADMIN", c.Role)
	assert.Equal(t, "a@example.com", c.Email)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := NewManager("a", "storefront", time.Hour).Issue("u1", Claims{})
	require.NoError(t, err)

	_, err = NewManager("b", "storefront", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", "storefront", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, err := m.Issue("u1", Claims{})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", "storefront", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
