package crypto

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"algocamp_backend/internal/logger"

	"golang.org/x/crypto/chacha20poly1305"
)

// cipherPrefix marks values written by this codec. Values without the
// marker are either legacy plaintext or garbage; both are handled by the
// read-path fallback in Decrypt.
const cipherPrefix = "v1:"

// ErrMissingKey is returned by NewFieldCodec when no encryption key is
// configured. Callers treat this as fatal at startup.
var ErrMissingKey = errors.New("encryption key is not configured")

// FieldCodec encrypts and decrypts individual sensitive text fields.
// Encryption is authenticated (XChaCha20-Poly1305) and intentionally
// non-deterministic: a fresh random nonce is drawn per call, so the same
// plaintext never produces the same ciphertext twice. Uniqueness of the
// underlying plaintext is therefore checked via Digest, not ciphertext
// equality.
type FieldCodec struct {
	aead    cipher.AEAD
	hmacKey []byte
}

// NewFieldCodec derives the AEAD and digest keys from the configured secret.
func NewFieldCodec(secret string) (*FieldCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingKey
	}
	if len(secret) < 16 {
		return nil, fmt.Errorf("encryption key too short: need at least 16 characters, got %d", len(secret))
	}

	encKey := sha256.Sum256([]byte("enc:" + secret))
	aead, err := chacha20poly1305.NewX(encKey[:])
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}

	macKey := sha256.Sum256([]byte("digest:" + secret))
	return &FieldCodec{aead: aead, hmacKey: macKey[:]}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the
// marker-prefixed base64 value stored in the database.
func (c *FieldCodec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return cipherPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns the plaintext for a stored value, tolerating two legacy
// shapes: values written before encryption existed (returned unchanged) and
// malformed ciphertext (logged and returned unchanged). A bad stored value
// must never abort a read path, so Decrypt does not return an error.
func (c *FieldCodec) Decrypt(stored string) string {
	if stored == "" {
		return ""
	}
	if looksLikePlaintext(stored) {
		return stored
	}

	raw := strings.TrimPrefix(stored, cipherPrefix)
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(data) <= chacha20poly1305.NonceSizeX {
		logger.Warn("stored value is neither plaintext nor valid ciphertext, returning as-is")
		return stored
	}

	nonce, sealed := data[:chacha20poly1305.NonceSizeX], data[chacha20poly1305.NonceSizeX:]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil || len(plain) == 0 {
		logger.Warn("field decryption failed, treating stored value as plaintext", "error", err)
		return stored
	}
	return string(plain)
}

// Digest computes the deterministic keyed hash of an already-normalized
// plaintext. Equal plaintexts always produce equal digests, which lets the
// store carry a real unique index over sensitive fields.
func (c *FieldCodec) Digest(normalized string) string {
	mac := hmac.New(sha256.New, c.hmacKey)
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// looksLikePlaintext applies the legacy-value heuristic, in order:
// phone/national-id shaped digit runs, short email-shaped values, and any
// short token that does not carry the ciphertext marker.
func looksLikePlaintext(v string) bool {
	if strings.HasPrefix(v, cipherPrefix) {
		return false
	}
	if isAllDigits(v) && len(v) >= 6 && len(v) <= 20 {
		return true
	}
	if strings.Contains(v, "@") && len(v) <= 100 {
		return true
	}
	return len(v) < 32
}

func isAllDigits(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
