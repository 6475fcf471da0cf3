package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const roomIDLength = 5

// GenerateRoomID - short random id players can read out to each other.
func GenerateRoomID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	return id[:roomIDLength]
}
