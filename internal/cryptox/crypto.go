// Package cryptox seals small values at rest with XChaCha20-Poly1305.
package cryptox

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/careercompass/internal/common"
	"github.com/dmitrijs2005/careercompass/internal/filex"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCiphertextTooShort is returned by Open when the input cannot hold a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Sealer encrypts and authenticates values. Sealed output is nonce||ciphertext.
// The associated data binds a value to its storage key, so a value copied
// under another key fails to open.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, common.ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

func (s *Sealer) Seal(plaintext, ad []byte) []byte {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nonce, nonce, plaintext, ad)
}

func (s *Sealer) Open(sealed, ad []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, sealed[:n], sealed[n:], ad)
}

// LoadOrCreateKey reads the key stored at path, or generates a new random key
// and writes it with 0600 permissions when the file does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("key file %s: %w", path, common.ErrInvalidKey)
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	key = common.GenerateRandByteArray(chacha20poly1305.KeySize)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}
