package session

import (
	"crypto/rand"
	"log"
	"math/big"
)

// GenerateRoomCode returns a fresh 8-digit numeric room code. The
// leading digit is never zero so the code survives any numeric
// round-trip intact.
func GenerateRoomCode() string {
	digits := make([]byte, 8)
	digits[0] = byte('1' + randomIndex(9))
	for i := 1; i < len(digits); i++ {
		digits[i] = byte('0' + randomIndex(10))
	}
	return string(digits)
}

// randomIndex returns a cryptographically secure random int in [0, max).
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		log.Panic("Failed to generate random index:", err)
	}
	return int(n.Int64())
}
