// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length in bytes of a decoded secrets encryption key.
const KeySize = chacha20poly1305.KeySize

// secretCipher is the private implementation of [SecretCipher].
type secretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher constructs a [SecretCipher] from a standard base64 encoded
// 256-bit key (the format produced by [GenerateKey]). Surrounding whitespace
// is ignored so keys pasted into dotenv files with a trailing newline still
// work. Returns an error wrapping [ErrInvalidKey] if the key cannot be used.
func NewSecretCipher(keyB64 string) (SecretCipher, error) {
	key, err := DecodeKey(keyB64)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	return &secretCipher{aead: aead}, nil
}

// GenerateKey reads KeySize random bytes from the OS CSPRNG and returns them
// base64 encoded, ready to be stored in SECRETS_ENCRYPTION_KEY.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// DecodeKey decodes a base64 key and checks its length.
func DecodeKey(keyB64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(keyB64))
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %w", ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(key), KeySize)
	}
	return key, nil
}

// Encrypt implements [SecretCipher]. The random nonce is prepended to the
// sealed output: blob = nonce ‖ ciphertext.
func (s *secretCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt implements [SecretCipher]. It splits the nonce off the front of
// blob and opens the remainder.
func (s *secretCipher) Decrypt(blob []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(blob) < nonceSize+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return plaintext, nil
}

// DecryptFile implements [SecretCipher].
func (s *secretCipher) DecryptFile(path string) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encrypted file: %w", err)
	}

	plaintext, err := s.Decrypt(blob)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", path, err)
	}

	return plaintext, nil
}
