package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewEncryptor("a passphrase, not a key")
	require.NoError(t, err)

	sealed, err := enc.EncryptString(`{"access_token":"ya29.abc"}`)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(sealed))
	assert.NotContains(t, sealed, "ya29")

	opened, err := enc.DecryptString(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"ya29.abc"}`, opened)
}

func TestEncryptor_NonceDiffers(t *testing.T) {
	enc, err := NewEncryptor("secret")
	require.NoError(t, err)

	a, err := enc.EncryptString("same")
	require.NoError(t, err)
	b, err := enc.EncryptString("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncryptor_Base64Key(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	enc, err := NewEncryptor(key)
	require.NoError(t, err)
	sealed, err := enc.Encrypt([]byte("hello"))
	require.NoError(t, err)

	same, err := NewEncryptor(key)
	require.NoError(t, err)
	opened, err := same.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(opened))
}

func TestEncryptor_WrongKey(t *testing.T) {
	enc, err := NewEncryptor("one")
	require.NoError(t, err)
	other, err := NewEncryptor("two")
	require.NoError(t, err)

	sealed, err := enc.EncryptString("token")
	require.NoError(t, err)

	_, err = other.DecryptString(sealed)
	assert.Error(t, err)
}

func TestEncryptor_PlaintextPassesThrough(t *testing.T) {
	enc, err := NewEncryptor("secret")
	require.NoError(t, err)

	out, err := enc.DecryptString(`{"access_token":"legacy"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"legacy"}`, out)
}

func TestEncryptor_Errors(t *testing.T) {
	_, err := NewEncryptor("")
	assert.Error(t, err)

	enc, err := NewEncryptor("secret")
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte("short"))
	assert.Error(t, err)

	_, err = enc.DecryptString(encryptedPrefix + "!!not base64!!")
	assert.Error(t, err)
}

func TestRequireToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"disabled", "", "", http.StatusNoContent},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"valid", "s3cret", "Bearer s3cret", http.StatusNoContent},
		{"case-insensitive scheme", "s3cret", "bearer s3cret", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/appointments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			RequireToken(tt.token)(ok).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.True(t, strings.HasPrefix(w.Body.String(), `{"error":`))
			}
		})
	}
}
