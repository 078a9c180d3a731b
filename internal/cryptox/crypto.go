// Package cryptox seals vault fields at rest. Every user gets an AES-256-GCM
// key derived with HKDF-SHA256 from the server master key, and each sealed
// value is bound to its owner, record and field through the GCM additional
// data.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/glider/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the length of the master key and every derived key.
	KeySize = 32

	infoPrefix = "glider/vault/"
)

// ErrOpen is returned when a sealed value fails authentication.
var ErrOpen = errors.New("cryptox: cannot open sealed value")

// DeriveMasterKey stretches an operator passphrase into a master key.
func DeriveMasterKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// AAD builds the additional data that ties a sealed value to its place.
func AAD(userID, recordID, field string) []byte {
	return []byte(userID + "\x00" + recordID + "\x00" + field)
}

// Sealer encrypts and decrypts values under per-user keys.
type Sealer struct {
	master []byte
}

// NewSealer copies master, which must be KeySize bytes long.
func NewSealer(master []byte) (*Sealer, error) {
	if len(master) != KeySize {
		return nil, fmt.Errorf("cryptox: master key must be %d bytes, got %d", KeySize, len(master))
	}
	k := make([]byte, KeySize)
	copy(k, master)
	return &Sealer{master: k}, nil
}

func (s *Sealer) userKey(userID string) ([]byte, error) {
	r := hkdf.New(sha256.New, s.master, nil, []byte(infoPrefix+userID))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: derive key: %w", err)
	}
	return key, nil
}

func (s *Sealer) aead(userID string) (cipher.AEAD, error) {
	key, err := s.userKey(userID)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)
	return newGCM(key)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext for userID. The output is nonce || ciphertext.
func (s *Sealer) Seal(userID string, plaintext, aad []byte) ([]byte, error) {
	gcm, err := s.aead(userID)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(gcm.NonceSize())
	return gcm.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal. Any tampering, wrong user or wrong aad yields ErrOpen.
func (s *Sealer) Open(userID string, sealed, aad []byte) ([]byte, error) {
	gcm, err := s.aead(userID)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, ErrOpen
	}
	nonce, ct := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

// SealString is Seal for text fields.
func (s *Sealer) SealString(userID, value string, aad []byte) ([]byte, error) {
	return s.Seal(userID, []byte(value), aad)
}

// OpenString is Open for text fields.
func (s *Sealer) OpenString(userID string, sealed, aad []byte) (string, error) {
	b, err := s.Open(userID, sealed, aad)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SealJSON serializes v to JSON and seals it.
func (s *Sealer) SealJSON(userID string, v any, aad []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(plaintext)
	return s.Seal(userID, plaintext, aad)
}

// OpenJSON opens sealed and unmarshals the JSON into v.
func (s *Sealer) OpenJSON(userID string, sealed, aad []byte, v any) error {
	plaintext, err := s.Open(userID, sealed, aad)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}
