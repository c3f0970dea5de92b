package mediagate

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet deliberately has no semantic content; codes are opaque.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the length of generated media codes.
const CodeLength = 8

// maxCodeAttempts bounds the check-and-regenerate loop. At this alphabet
// and length, hitting the bound means something else is wrong.
const maxCodeAttempts = 5

// GenerateCode returns a random alphanumeric code of CodeLength characters.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
