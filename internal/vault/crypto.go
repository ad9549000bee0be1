package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 16
	keySize  = 32

	// OWASP recommendation for PBKDF2-SHA256.
	iterations = 600_000
)

// Replaceable for testing error paths.
var randRead = rand.Read

// deriveKey stretches a passphrase into an AES-256 key.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
}

// newSalt returns a fresh random salt.
func newSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := randRead(salt); err != nil {
		return nil, fmt.Errorf("vault: new salt: %w", err)
	}
	return salt, nil
}

// seal encrypts plaintext with AES-256-GCM. The random nonce is
// prepended to the returned ciphertext.
func seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: seal: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: seal: new gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := randRead(nonce); err != nil {
		return nil, fmt.Errorf("vault: seal: nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// unseal decrypts ciphertext produced by seal.
func unseal(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: unseal: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: unseal: new gcm: %w", err)
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("vault: unseal: ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("vault: unseal: %w", err)
	}
	return plaintext, nil
}
