package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Token sizes in random bytes; hex encoding doubles the length on the wire.
const (
	VerificationTokenBytes = 32
	ResetTokenBytes        = 16
)

// GenerateToken returns a hex-encoded secret built from n cryptographically
// secure random bytes.
func GenerateToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate random token: %v", err))
	}
	return hex.EncodeToString(b)
}

// SecureCompare reports whether a and b are equal without leaking the
// position of the first mismatching byte through timing.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
