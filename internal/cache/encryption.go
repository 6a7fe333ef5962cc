package cache

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	encryptionSaltSize = 32
	encryptionKeyIter  = 10000
	encryptionKeySize  = 32
)

// Encryptor provides AES-256-GCM encryption for values stored in the Redis
// tier. Each value gets a fresh salt and nonce; the output layout is
// salt + nonce + ciphertext.
type Encryptor struct {
	masterKey []byte
}

// NewEncryptor creates an Encryptor from the process-held secret. An empty
// key is a configuration error handled by the caller before reaching here.
func NewEncryptor(masterKey string) (*Encryptor, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("encryption key must not be empty")
	}
	hash := sha256.Sum256([]byte(masterKey))
	return &Encryptor{masterKey: hash[:]}, nil
}

// Encrypt seals data with a per-value derived key.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, encryptionSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	gcm, err := e.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	return append(out, ciphertext...), nil
}

// Decrypt reverses Encrypt.
func (e *Encryptor) Decrypt(encrypted []byte) ([]byte, error) {
	if len(encrypted) < encryptionSaltSize+12 {
		return nil, fmt.Errorf("encrypted payload too short")
	}

	salt := encrypted[:encryptionSaltSize]
	gcm, err := e.aead(salt)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(encrypted) < encryptionSaltSize+nonceSize {
		return nil, fmt.Errorf("encrypted payload too short")
	}

	nonce := encrypted[encryptionSaltSize : encryptionSaltSize+nonceSize]
	ciphertext := encrypted[encryptionSaltSize+nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting value: %w", err)
	}
	return plaintext, nil
}

func (e *Encryptor) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.masterKey, salt, encryptionKeyIter, encryptionKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
