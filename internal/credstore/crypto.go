package credstore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rotisserie/eris"
	"golang.org/x/crypto/chacha20poly1305"
)

// sealSecrets encrypts plaintext with XChaCha20-Poly1305. The random
// 24-byte nonce is prepended to the returned ciphertext.
func sealSecrets(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, eris.Wrap(err, "credstore: init cipher")
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, eris.Wrap(err, "credstore: generate nonce")
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// openSecrets decrypts ciphertext produced by sealSecrets.
func openSecrets(key, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, eris.Wrap(err, "credstore: init cipher")
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, eris.New("credstore: ciphertext too short")
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, eris.Wrap(err, "credstore: decrypt")
	}
	return plaintext, nil
}

// newKey generates a fresh 256-bit cipher key.
func newKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, eris.Wrap(err, "credstore: generate key")
	}
	return key, nil
}

// Fingerprint derives a short non-reversible identifier for a secret,
// safe for logs and masked display. Empty input maps to "empty".
func Fingerprint(secret string) string {
	if secret == "" {
		return "empty"
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:8]
}

// Mask renders a secret as its first and last four characters for display.
// Short secrets are fully masked.
func Mask(secret string) string {
	const visible = 4
	if len(secret) <= visible*2 {
		return "****"
	}
	return secret[:visible] + "..." + secret[len(secret)-visible:]
}
