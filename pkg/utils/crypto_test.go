package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sealed, err := Encrypt([]byte("sk-live-123"), testKey)
	require.NoError(t, err)
	assert.NotEqual(t, "sk-live-123", sealed)

	plain, err := Decrypt(sealed, testKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-123", plain)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), testKey)
	require.NoError(t, err)

	_, err = Decrypt(sealed, []byte("fedcba9876543210fedcba9876543210"))
	assert.Error(t, err)
}

func TestDecryptRejectsTruncatedInput(t *testing.T) {
	_, err := Decrypt("c2hvcnQ=", testKey)
	assert.Error(t, err)
}
