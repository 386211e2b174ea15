package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLifecycle(t *testing.T) {
	m := NewWithKeyring(keyring.NewArrayKeyring(nil))

	_, err := m.LoadToken()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveToken("tok-123"))
	got, err := m.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)

	require.NoError(t, m.SaveAuthState([]byte(`{"logged_in":true}`)))
	require.NoError(t, m.ClearAuth())
	require.NoError(t, m.ClearAuth())

	_, err = m.LoadToken()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.LoadAuthState()
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, m.SaveToken(""))
}

func TestBackendsFor(t *testing.T) {
	assert.Equal(t, []keyring.BackendType{keyring.WinCredBackend}, backendsFor("windows"))
	assert.Contains(t, backendsFor("linux"), keyring.SecretServiceBackend)
	assert.Equal(t, keyring.KeychainBackend, backendsFor("darwin")[0])
}
