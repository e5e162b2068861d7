package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/secret_cipher_mock.go -package=mock

// SecretCipher encrypts and decrypts secret configuration files with a single
// symmetric key. It knows nothing about file formats or precedence; callers
// get raw plaintext bytes back and parse them as if they had been read from
// disk.
//
// Blob layout:
//
//	nonce (24 bytes) ‖ XChaCha20-Poly1305 ciphertext ‖ tag (16 bytes)
type SecretCipher interface {
	// Encrypt seals plaintext under the cipher key with a fresh random nonce.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt. Returns ErrDecrypt when the
	// key is wrong or the blob was modified.
	Decrypt(blob []byte) ([]byte, error)

	// DecryptFile reads path and decrypts its contents. A missing file is
	// reported with an error wrapping fs.ErrNotExist so callers can tell it
	// apart from a wrong key.
	DecryptFile(path string) ([]byte, error)
}
