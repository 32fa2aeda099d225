package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "unit-test-encryption-key-0123456789"

func newTestCodec(t *testing.T) *FieldCodec {
	t.Helper()
	codec, err := NewFieldCodec(testKey)
	require.NoError(t, err)
	return codec
}

func TestNewFieldCodec_MissingKey(t *testing.T) {
	_, err := NewFieldCodec("")
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = NewFieldCodec("   ")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestNewFieldCodec_ShortKey(t *testing.T) {
	_, err := NewFieldCodec("too-short")
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, plaintext := range []string{
		"29801234567890",
		"+7 (701) 555-01-02",
		"applicant@example.com",
		"значение с юникодом",
	} {
		stored, err := codec.Encrypt(plaintext)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stored, "v1:"))
		assert.Equal(t, plaintext, codec.Decrypt(stored))
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	codec := newTestCodec(t)

	first, err := codec.Encrypt("123456789")
	require.NoError(t, err)
	second, err := codec.Encrypt("123456789")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "123456789", codec.Decrypt(first))
	assert.Equal(t, "123456789", codec.Decrypt(second))
}

func TestDecrypt_LegacyPlaintextPassthrough(t *testing.T) {
	codec := newTestCodec(t)

	// Values written before encryption was introduced come back unchanged.
	assert.Equal(t, "user@example.com", codec.Decrypt("user@example.com"))
	assert.Equal(t, "29801234567890", codec.Decrypt("29801234567890"))
	assert.Equal(t, "short-token", codec.Decrypt("short-token"))
}

func TestDecrypt_MalformedCiphertext(t *testing.T) {
	codec := newTestCodec(t)

	// Carries the marker but is not valid ciphertext: the read path must
	// not fail, the stored value is returned as-is.
	stored := "v1:not-really-base64!!!"
	assert.Equal(t, stored, codec.Decrypt(stored))

	// Valid base64, garbage payload.
	stored = "v1:QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVphYmNkZWZnaGlqa2xtbm9w"
	assert.Equal(t, stored, codec.Decrypt(stored))
}

func TestDecrypt_WrongKeyFallsBack(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewFieldCodec("another-encryption-key-9876543210")
	require.NoError(t, err)

	stored, err := other.Encrypt("sensitive value that is long enough to not look plain")
	require.NoError(t, err)

	// Authentication fails under the wrong key; stored value survives.
	assert.Equal(t, stored, codec.Decrypt(stored))
}

func TestDecrypt_Empty(t *testing.T) {
	codec := newTestCodec(t)
	assert.Equal(t, "", codec.Decrypt(""))
}

func TestDigest_Deterministic(t *testing.T) {
	codec := newTestCodec(t)

	a := codec.Digest("123456789")
	b := codec.Digest("123456789")
	c := codec.Digest("987654321")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestDigest_KeyDependent(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewFieldCodec("another-encryption-key-9876543210")
	require.NoError(t, err)

	assert.NotEqual(t, codec.Digest("123456789"), other.Digest("123456789"))
}
