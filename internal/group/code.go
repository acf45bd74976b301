package group

import (
	"crypto/rand"
	"fmt"

	"github.com/mmynk/tripbite/internal/models"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Largest multiple of len(codeAlphabet) that fits in a byte; bytes at or above it
// are rejected so every symbol is equally likely.
const codeByteLimit = 256 - 256%len(codeAlphabet)

// GenerateCode returns a random join code of models.JoinCodeLength characters
// drawn uniformly from A-Z0-9.
func GenerateCode() (string, error) {
	code := make([]byte, 0, models.JoinCodeLength)
	buf := make([]byte, models.JoinCodeLength*2)
	for len(code) < models.JoinCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= codeByteLimit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == models.JoinCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
