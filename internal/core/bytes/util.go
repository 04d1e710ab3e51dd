package bytes

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var hexRegex = regexp.MustCompile(`^[0-9A-Fa-f]*$`)

// PadZero returns a copy of b extended with 0x00 bytes to a multiple of
// blockSize. The result always holds at least one block, so an empty b
// becomes blockSize zero bytes.
func PadZero(b []byte, blockSize int) []byte {
	size := (len(b) + blockSize - 1) / blockSize * blockSize
	if size == 0 {
		size = blockSize
	}
	padded := make([]byte, size)
	copy(padded, b)
	return padded
}

// StripPadding returns a slice of b without the trailing 0s.
func StripPadding(b []byte) []byte {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			return b[:i+1]
		}
	}
	return []byte{}
}

// TextToBytes returns the UTF-8 encoding of s.
func TextToBytes(s string) []byte {
	return []byte(s)
}

// BytesToText decodes b as UTF-8. A leading byte order mark is dropped and
// ill-formed sequences are replaced with U+FFFD rather than failing, since
// decrypting with the wrong key routinely produces arbitrary bytes.
func BytesToText(b []byte) string {
	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(b)
	if err != nil {
		// The UTF-8 decoder substitutes instead of erroring; keep the raw bytes
		// if that ever changes.
		return string(b)
	}
	return string(decoded)
}

// BytesToHex formats b as lowercase hex, two digits per byte.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// ValidateHex checks that s has an even number of characters, all of them
// hex digits. The empty string is valid.
func ValidateHex(s string) error {
	if len(s)%2 != 0 {
		return fmt.Errorf("hex string length must be even, got %d", len(s))
	}
	if !hexRegex.MatchString(s) {
		return fmt.Errorf("invalid hex string")
	}
	return nil
}

// HexToBytes trims surrounding whitespace from s, validates it and decodes it.
func HexToBytes(s string) ([]byte, error) {
	clean := strings.TrimSpace(s)
	if err := ValidateHex(clean); err != nil {
		return nil, err
	}
	return hex.DecodeString(clean)
}
