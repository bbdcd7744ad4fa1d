package moderation

import "math/rand/v2"

const (
	caseIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	caseIDLength   = 5
	// Attempts before accepting whatever the generator produced.
	caseIDAttempts = 16
)

// GenerateCaseID returns a random 5-character uppercase alphanumeric ID.
func GenerateCaseID() string {
	b := make([]byte, caseIDLength)
	for i := range b {
		b[i] = caseIDAlphabet[rand.IntN(len(caseIDAlphabet))]
	}
	return string(b)
}
