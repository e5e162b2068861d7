package crypto

import "errors"

var (
	// ErrInvalidKey indicates the key is not standard base64 or does not
	// decode to exactly KeySize bytes.
	ErrInvalidKey = errors.New("invalid secrets encryption key")
	// ErrCiphertextTooShort indicates the blob cannot even hold a nonce and tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrDecrypt indicates authentication failed: wrong key or corrupted blob.
	ErrDecrypt = errors.New("decryption failed")
)
