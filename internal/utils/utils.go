package utils

import (
	"math/rand/v2"
	"strings"

	"github.com/scythe504/basta-backend/internal"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateRoomCode returns a random code of uppercase letters.
func GenerateRoomCode() string {
	code := make([]byte, internal.RoomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
	}
	return string(code)
}

// NormalizeRoomID applies the case rule for room ids: every lookup is done
// on the uppercase form.
func NormalizeRoomID(roomID string) string {
	return strings.ToUpper(strings.TrimSpace(roomID))
}

// NormalizeAnswer is the stored form of a submitted answer.
func NormalizeAnswer(answer string) string {
	return strings.TrimSpace(strings.ToUpper(answer))
}
