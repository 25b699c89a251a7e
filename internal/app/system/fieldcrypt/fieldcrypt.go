// Package fieldcrypt encrypts individual document fields at rest.
//
// Keys are derived with PBKDF2-HMAC-SHA256 from a server secret and a
// per-record salt (normally the owning user's ID). Values are sealed with
// AES-256-GCM and stored as base64(iv || ciphertext || tag).
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor.
	Iterations = 100_000
	// KeySize is the derived key length in bytes (AES-256).
	KeySize = 32
	// IVSize is the GCM nonce length in bytes.
	IVSize = 12
)

var (
	// ErrDecrypt is returned when a value cannot be opened: wrong key,
	// truncated input, or tampered ciphertext.
	ErrDecrypt = errors.New("fieldcrypt: unable to decrypt value")
	// ErrNoSecret is returned by NewKeyring when the secret is empty.
	ErrNoSecret = errors.New("fieldcrypt: secret is empty")
)

// DeriveKey runs PBKDF2 over secret and salt.
func DeriveKey(secret, salt string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(salt), Iterations, KeySize, sha256.New)
}

// Cipher seals and opens values with one derived key.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher around a raw 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("fieldcrypt: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random IV. Empty input stays empty.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("fieldcrypt: read iv: %w", err)
	}
	sealed := c.aead.Seal(iv, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Empty input stays empty.
func (c *Cipher) Decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(raw) < IVSize+c.aead.Overhead() {
		return "", ErrDecrypt
	}
	pt, err := c.aead.Open(nil, raw[:IVSize], raw[IVSize:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(pt), nil
}

// Keyring hands out Ciphers per salt and caches the derived keys.
// It is safe for concurrent use.
type Keyring struct {
	secret string

	mu      sync.Mutex
	ciphers map[string]*Cipher
}

// NewKeyring returns a Keyring for the given server secret.
func NewKeyring(secret string) (*Keyring, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Keyring{secret: secret, ciphers: make(map[string]*Cipher)}, nil
}

// For returns the Cipher bound to salt.
func (k *Keyring) For(salt string) (*Cipher, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if c, ok := k.ciphers[salt]; ok {
		return c, nil
	}
	c, err := NewCipher(DeriveKey(k.secret, salt))
	if err != nil {
		return nil, err
	}
	k.ciphers[salt] = c
	return c, nil
}

// Encrypt is shorthand for For(salt) followed by Encrypt.
func (k *Keyring) Encrypt(salt, plaintext string) (string, error) {
	c, err := k.For(salt)
	if err != nil {
		return "", err
	}
	return c.Encrypt(plaintext)
}

// Decrypt is shorthand for For(salt) followed by Decrypt.
func (k *Keyring) Decrypt(salt, value string) (string, error) {
	c, err := k.For(salt)
	if err != nil {
		return "", err
	}
	return c.Decrypt(value)
}
