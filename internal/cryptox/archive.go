package cryptox

import (
	"bytes"
	"errors"

	"github.com/dmitrijs2005/glider/internal/common"
)

// Vault archives are sealed under a key stretched from a passphrase chosen
// by the user, so they can be opened without the server. Layout:
//
//	magic (4) || salt (16) || nonce (12) || ciphertext
//
// The magic and salt are authenticated as additional data.
const (
	archiveMagic    = "GLA1"
	archiveSaltSize = 16

	// MinPassphraseLength is the shortest passphrase accepted for archives.
	MinPassphraseLength = 8
)

// ErrNotArchive is returned for data that does not start with an archive
// header.
var ErrNotArchive = errors.New("cryptox: not a sealed archive")

// SealArchive encrypts plaintext under passphrase with a fresh salt.
func SealArchive(passphrase, plaintext []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(archiveSaltSize)
	key := DeriveMasterKey(passphrase, salt)
	defer common.WipeByteArray(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	header := append([]byte(archiveMagic), salt...)
	nonce := common.GenerateRandByteArray(gcm.NonceSize())
	out := append(bytes.Clone(header), nonce...)
	return gcm.Seal(out, nonce, plaintext, header), nil
}

// OpenArchive reverses SealArchive. A wrong passphrase or any tampering
// yields ErrOpen.
func OpenArchive(passphrase, sealed []byte) ([]byte, error) {
	headerLen := len(archiveMagic) + archiveSaltSize
	if len(sealed) < headerLen || string(sealed[:len(archiveMagic)]) != archiveMagic {
		return nil, ErrNotArchive
	}
	header, salt := sealed[:headerLen], sealed[len(archiveMagic):headerLen]

	key := DeriveMasterKey(passphrase, salt)
	defer common.WipeByteArray(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	rest := sealed[headerLen:]
	if len(rest) < gcm.NonceSize() {
		return nil, ErrOpen
	}
	plaintext, err := gcm.Open(nil, rest[:gcm.NonceSize()], rest[gcm.NonceSize():], header)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}
