package encryption

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// tableSize is the number of bytes needed to seed one P-array and four S-boxes.
const tableSize = (pSize + 4*sBoxSize) * 4

// piHex holds the fractional hexadecimal digits of pi that seed every key
// schedule. Editing this file changes every ciphertext produced by the package.
//
//go:embed pi.hex
var piHex string

var (
	tableOnce sync.Once
	table     []byte
	tableErr  error
)

// constantTable decodes the embedded digits the first time it is called and
// returns the same read-only slice on every call after that.
func constantTable() ([]byte, error) {
	tableOnce.Do(func() {
		table, tableErr = decodeTable(piHex)
	})
	return table, tableErr
}

func decodeTable(digits string) ([]byte, error) {
	b, err := hex.DecodeString(strings.Join(strings.Fields(digits), ""))
	if err != nil {
		return nil, fmt.Errorf("decoding constant table: %w", err)
	}
	if len(b) < tableSize {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrInsufficientConstantData, len(b), tableSize)
	}
	return b, nil
}
