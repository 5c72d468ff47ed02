package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_SealOpen(t *testing.T) {
	s, err := NewSealer("master-key")
	require.NoError(t, err)

	sealed, err := s.Seal("rates_app_id", []byte("abc123"))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "abc123")

	plain, err := s.Open("rates_app_id", sealed)
	require.NoError(t, err)
	assert.Equal(t, "abc123", string(plain))
}

func TestSealer_RejectsWrongNameOrKey(t *testing.T) {
	s, err := NewSealer("master-key")
	require.NoError(t, err)
	sealed, err := s.Seal("rates_app_id", []byte("abc123"))
	require.NoError(t, err)

	_, err = s.Open("other", sealed)
	assert.Error(t, err)

	other, err := NewSealer("another-key")
	require.NoError(t, err)
	_, err = other.Open("rates_app_id", sealed)
	assert.Error(t, err)
}

func TestNewSealer_RequiresKey(t *testing.T) {
	_, err := NewSealer("")
	assert.ErrorIs(t, err, ErrNoKey)
}
