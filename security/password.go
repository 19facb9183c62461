package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword returns a random password of n characters without
// look-alike letters. Every character is drawn uniformly from the alphabet.
func GeneratePassword(n int) (string, error) {
	size := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to read random number: %w", err)
		}
		buf[i] = passwordAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
