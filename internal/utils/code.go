package utils

import (
	"crypto/rand" // Random source for confirmation codes
	"math/big"    // Arbitrary precision ints for rand.Int
)

// Alphabet for confirmation codes: digits plus uppercase letters
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Length of generated confirmation codes
const codeLength = 6

// GenerateConfirmationCode returns a random 6-character code drawn from
// digits and uppercase letters, the shared secret sent by email
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, codeLength) // Buffer for the code characters
	for i := range buf {
		// Pick a random index into the alphabet
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err // Random source failure
		}
		buf[i] = codeAlphabet[n.Int64()] // Store the chosen character
	}
	return string(buf), nil // Return the assembled code
}
