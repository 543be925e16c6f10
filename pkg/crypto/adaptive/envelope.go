package adaptive

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Envelope layout:
//
//	magic "PBX1" | cipher type (1) | salt (16) | nonce | ciphertext | tag
//
// The header is authenticated as additional data.
var envelopeMagic = []byte("PBX1")

const saltSize = 16

// Argon2id parameters for passphrase keys.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrBadPassphrase is returned when an envelope fails authentication.
var ErrBadPassphrase = errors.New("adaptive: wrong passphrase or corrupted data")

// ErrNotSealed is returned for data without the envelope header.
var ErrNotSealed = errors.New("adaptive: data is not a sealed envelope")

// DeriveKey stretches a passphrase into a cipher key with Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, KeySize)
}

// Seal encrypts plaintext under passphrase with the preferred cipher.
func Seal(passphrase, plaintext []byte) ([]byte, error) {
	return SealWithType(passphrase, plaintext, Preferred())
}

// SealWithType encrypts plaintext under passphrase with the given cipher.
func SealWithType(passphrase, plaintext []byte, typ CipherType) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("adaptive: empty passphrase")
	}

	header := make([]byte, 0, len(envelopeMagic)+1+saltSize)
	header = append(header, envelopeMagic...)
	header = append(header, byte(typ))
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("adaptive: salt: %w", err)
	}
	header = append(header, salt...)

	c, err := NewWithType(DeriveKey(passphrase, salt), typ)
	if err != nil {
		return nil, err
	}
	body, err := c.Encrypt(plaintext, header)
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

// Open decrypts an envelope produced by Seal. The cipher is taken from the
// header, so envelopes open on any architecture.
func Open(passphrase, sealed []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrNotSealed
	}
	headerLen := len(envelopeMagic) + 1 + saltSize
	if len(sealed) < headerLen {
		return nil, ErrNotSealed
	}
	header := sealed[:headerLen]
	typ := CipherType(header[len(envelopeMagic)])
	salt := header[len(envelopeMagic)+1:]

	c, err := NewWithType(DeriveKey(passphrase, salt), typ)
	if err != nil {
		return nil, err
	}
	plaintext, err := c.Decrypt(sealed[headerLen:], header)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plaintext, nil
}

// IsSealed reports whether data starts with the envelope magic.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, envelopeMagic)
}
