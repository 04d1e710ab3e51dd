package encryption

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidKeyLength is matched by every KeySizeError.
	ErrInvalidKeyLength = errors.New("blowfish: invalid key length")
	// ErrInvalidCiphertextLength is matched by every CiphertextSizeError.
	ErrInvalidCiphertextLength = errors.New("blowfish: invalid ciphertext length")
	// ErrInsufficientConstantData means the embedded constant table is truncated
	// or corrupt. It indicates a broken build rather than bad input.
	ErrInsufficientConstantData = errors.New("blowfish: insufficient constant data")
)

// KeySizeError is returned by NewCipher for keys outside [MinKeySize, MaxKeySize].
type KeySizeError int

func (k KeySizeError) Error() string {
	return "blowfish: invalid key size " + strconv.Itoa(int(k))
}

func (k KeySizeError) Is(target error) bool {
	return target == ErrInvalidKeyLength
}

// CiphertextSizeError is returned by Decrypt for input that is not a whole
// number of blocks.
type CiphertextSizeError int

func (c CiphertextSizeError) Error() string {
	return "blowfish: ciphertext length " + strconv.Itoa(int(c)) + " is not a multiple of " + strconv.Itoa(BlockSize)
}

func (c CiphertextSizeError) Is(target error) bool {
	return target == ErrInvalidCiphertextLength
}
