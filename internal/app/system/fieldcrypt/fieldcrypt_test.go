package fieldcrypt_test

import (
	"encoding/base64"
	"testing"

	"github.com/glrs/lighthouse/internal/app/system/fieldcrypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyring_RoundTrip(t *testing.T) {
	kr, err := fieldcrypt.NewKeyring("server-secret")
	require.NoError(t, err)

	enc, err := kr.Encrypt("user-1", "called my sponsor today")
	require.NoError(t, err)
	assert.NotEqual(t, "called my sponsor today", enc)

	dec, err := kr.Decrypt("user-1", enc)
	require.NoError(t, err)
	assert.Equal(t, "called my sponsor today", dec)
}

func TestEncrypt_FreshIVEachTime(t *testing.T) {
	c, err := fieldcrypt.NewCipher(fieldcrypt.DeriveKey("s", "salt"))
	require.NoError(t, err)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, fieldcrypt.IVSize+len("same")+16)
}

func TestDecrypt_WrongSalt(t *testing.T) {
	kr, err := fieldcrypt.NewKeyring("server-secret")
	require.NoError(t, err)

	enc, err := kr.Encrypt("user-1", "private")
	require.NoError(t, err)

	_, err = kr.Decrypt("user-2", enc)
	assert.ErrorIs(t, err, fieldcrypt.ErrDecrypt)
}

func TestDecrypt_Tampered(t *testing.T) {
	c, err := fieldcrypt.NewCipher(fieldcrypt.DeriveKey("s", "salt"))
	require.NoError(t, err)

	enc, err := c.Encrypt("private")
	require.NoError(t, err)
	raw, _ := base64.StdEncoding.DecodeString(enc)
	raw[len(raw)-1] ^= 0xff

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, fieldcrypt.ErrDecrypt)

	_, err = c.Decrypt("not base64!")
	assert.ErrorIs(t, err, fieldcrypt.ErrDecrypt)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, fieldcrypt.ErrDecrypt)
}

func TestEmptyPassesThrough(t *testing.T) {
	kr, err := fieldcrypt.NewKeyring("server-secret")
	require.NoError(t, err)

	enc, err := kr.Encrypt("u", "")
	require.NoError(t, err)
	assert.Empty(t, enc)

	dec, err := kr.Decrypt("u", "")
	require.NoError(t, err)
	assert.Empty(t, dec)
}

func TestNewKeyring_RequiresSecret(t *testing.T) {
	_, err := fieldcrypt.NewKeyring("")
	assert.ErrorIs(t, err, fieldcrypt.ErrNoSecret)
}

func TestNewCipher_BadKey(t *testing.T) {
	_, err := fieldcrypt.NewCipher([]byte("short"))
	assert.Error(t, err)
}

func TestKeyring_CachesCipher(t *testing.T) {
	kr, err := fieldcrypt.NewKeyring("server-secret")
	require.NoError(t, err)

	a, err := kr.For("user-1")
	require.NoError(t, err)
	b, err := kr.For("user-1")
	require.NoError(t, err)
	assert.Same(t, a, b)
}
