package padgen

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo separates padbreak keystreams from other uses of the same seed.
const hkdfInfo = "padbreak many-time pad v1"

// ErrEmptySeed is returned for an empty seed.
var ErrEmptySeed = errors.New("padgen: seed is empty")

// Pad is a reusable keystream.
type Pad struct {
	key   [chacha20.KeySize]byte
	nonce [chacha20.NonceSize]byte
}

// New derives a pad from seed.
func New(seed []byte) (*Pad, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}

	p := &Pad{}
	kdf := hkdf.New(sha256.New, seed, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, p.key[:]); err != nil {
		return nil, fmt.Errorf("padgen: derive key: %w", err)
	}
	if _, err := io.ReadFull(kdf, p.nonce[:]); err != nil {
		return nil, fmt.Errorf("padgen: derive nonce: %w", err)
	}
	return p, nil
}

// Keystream returns the first n keystream bytes.
func (p *Pad) Keystream(n int) []byte {
	out := make([]byte, n)
	p.xor(out, out)
	return out
}

// Encrypt XORs plaintext with the keystream from offset 0. Calling it for
// several plaintexts is exactly the key reuse a many-time pad suffers from.
func (p *Pad) Encrypt(plaintext []byte) []byte {
	out := make([]byte, len(plaintext))
	p.xor(out, plaintext)
	return out
}

// EncryptAll encrypts every plaintext with the same keystream.
func (p *Pad) EncryptAll(plaintexts [][]byte) [][]byte {
	out := make([][]byte, len(plaintexts))
	for i, pt := range plaintexts {
		out[i] = p.Encrypt(pt)
	}
	return out
}

func (p *Pad) xor(dst, src []byte) {
	c, err := chacha20.NewUnauthenticatedCipher(p.key[:], p.nonce[:])
	if err != nil {
		// Key and nonce sizes are fixed by the array types.
		panic(err)
	}
	c.XORKeyStream(dst, src)
}

// Split distributes lines round-robin over n batches. Batches never come
// out empty unless there are fewer lines than batches.
func Split[T any](lines []T, n int) [][]T {
	if n < 1 {
		n = 1
	}
	if n > len(lines) && len(lines) > 0 {
		n = len(lines)
	}
	out := make([][]T, n)
	for i, l := range lines {
		out[i%n] = append(out[i%n], l)
	}
	return out
}
