// Package encryption implements the Blowfish block cipher and the zero-padded
// message encryption built on top of it.
//
// Messages are padded with 0x00 bytes up to a whole number of blocks and each
// block is encrypted on its own (ECB). Decrypt strips every trailing 0x00 byte,
// so a plaintext that genuinely ends in zero bytes does not survive a round
// trip unchanged. Ciphertexts produced by older versions of the tool depend on
// this exact behavior.
package encryption

import (
	"encoding/binary"

	bytes2 "github.com/dcrodman/bfcrypt/internal/core/bytes"
)

// BlockSize is the Blowfish block size in bytes.
const BlockSize = 8

// Accepted key lengths in bytes.
const (
	MinKeySize = 4
	MaxKeySize = 56
)

const (
	pSize    = 18
	sBoxSize = 256
)

// A Cipher is an instance of Blowfish encryption using a particular key. Its
// subkeys are fixed once NewCipher returns, so a single Cipher may be shared
// by any number of goroutines.
type Cipher struct {
	p              [pSize]uint32
	s0, s1, s2, s3 [sBoxSize]uint32
}

// NewCipher derives the key schedule for key and returns a Cipher using it.
// The key must be between MinKeySize and MaxKeySize bytes long.
func NewCipher(key []byte) (*Cipher, error) {
	if k := len(key); k < MinKeySize || k > MaxKeySize {
		return nil, KeySizeError(k)
	}

	t, err := constantTable()
	if err != nil {
		return nil, err
	}

	var c Cipher
	if err := initCipher(&c, t); err != nil {
		return nil, err
	}
	expandKey(key, &c)
	return &c, nil
}

// BlockSize returns the Blowfish block size, 8 bytes.
func (c *Cipher) BlockSize() int { return BlockSize }

// Encrypt pads a copy of plaintext with zero bytes to a multiple of BlockSize
// and encrypts it block by block. An empty plaintext yields one block.
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	out := bytes2.PadZero(plaintext, BlockSize)
	for i := 0; i < len(out); i += BlockSize {
		c.EncryptBlock(out[i:i+BlockSize], out[i:i+BlockSize])
	}
	return out
}

// Decrypt decrypts ciphertext block by block and removes the trailing zero
// bytes left by Encrypt's padding.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%BlockSize != 0 {
		return nil, CiphertextSizeError(len(ciphertext))
	}

	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += BlockSize {
		c.DecryptBlock(out[i:i+BlockSize], ciphertext[i:i+BlockSize])
	}
	return bytes2.StripPadding(out), nil
}

// EncryptBlock encrypts the 8-byte block src and stores the result in dst.
// dst and src may overlap entirely.
func (c *Cipher) EncryptBlock(dst, src []byte) {
	l := binary.BigEndian.Uint32(src[0:4])
	r := binary.BigEndian.Uint32(src[4:8])
	l, r = encryptBlock(l, r, c)
	binary.BigEndian.PutUint32(dst[0:4], l)
	binary.BigEndian.PutUint32(dst[4:8], r)
}

// DecryptBlock decrypts the 8-byte block src and stores the result in dst.
func (c *Cipher) DecryptBlock(dst, src []byte) {
	l := binary.BigEndian.Uint32(src[0:4])
	r := binary.BigEndian.Uint32(src[4:8])
	l, r = decryptBlock(l, r, c)
	binary.BigEndian.PutUint32(dst[0:4], l)
	binary.BigEndian.PutUint32(dst[4:8], r)
}

// Subkeys returns a copy of the derived P-array. It exists for debugging tools.
func (c *Cipher) Subkeys() [pSize]uint32 {
	return c.p
}
