package encryption

import (
	"encoding/binary"
	"fmt"
)

// initCipher loads the P-array followed by S-boxes 0 through 3 from consecutive
// big-endian words of t.
func initCipher(c *Cipher, t []byte) error {
	if len(t) < tableSize {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrInsufficientConstantData, len(t), tableSize)
	}

	pos := 0
	for i := range c.p {
		c.p[i] = binary.BigEndian.Uint32(t[pos:])
		pos += 4
	}
	for _, s := range c.sBoxes() {
		for i := range s {
			s[i] = binary.BigEndian.Uint32(t[pos:])
			pos += 4
		}
	}
	return nil
}

// expandKey mixes key into the P-array, repeating it as often as needed, and
// then replaces every subkey with the output of encrypting the previous one.
// The chain is order dependent and must stay sequential.
func expandKey(key []byte, c *Cipher) {
	for i := range c.p {
		var d uint32
		for j := 0; j < 4; j++ {
			d = d<<8 | uint32(key[(i*4+j)%len(key)])
		}
		c.p[i] ^= d
	}

	var l, r uint32
	for i := 0; i < pSize; i += 2 {
		l, r = encryptBlock(l, r, c)
		c.p[i], c.p[i+1] = l, r
	}
	for _, s := range c.sBoxes() {
		for i := 0; i < sBoxSize; i += 2 {
			l, r = encryptBlock(l, r, c)
			s[i], s[i+1] = l, r
		}
	}
}

func (c *Cipher) sBoxes() [4]*[sBoxSize]uint32 {
	return [4]*[sBoxSize]uint32{&c.s0, &c.s1, &c.s2, &c.s3}
}
