package encryption

const rounds = 16

// f splits x into four bytes and combines their S-box entries. The additions
// wrap modulo 2^32.
func f(x uint32, c *Cipher) uint32 {
	return ((c.s0[byte(x>>24)] + c.s1[byte(x>>16)]) ^ c.s2[byte(x>>8)]) + c.s3[byte(x)]
}

func encryptBlock(l, r uint32, c *Cipher) (uint32, uint32) {
	xl, xr := l, r
	for i := 0; i < rounds; i++ {
		xl ^= c.p[i]
		xr ^= f(xl, c)
		xl, xr = xr, xl
	}
	// Undo the last swap before whitening with P[16] and P[17].
	xl, xr = xr, xl
	xr ^= c.p[rounds]
	xl ^= c.p[rounds+1]
	return xl, xr
}

func decryptBlock(l, r uint32, c *Cipher) (uint32, uint32) {
	xl, xr := l, r
	for i := rounds + 1; i > 1; i-- {
		xl ^= c.p[i]
		xr ^= f(xl, c)
		xl, xr = xr, xl
	}
	xl, xr = xr, xl
	xr ^= c.p[1]
	xl ^= c.p[0]
	return xl, xr
}
