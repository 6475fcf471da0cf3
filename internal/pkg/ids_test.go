package pkg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{5}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateRoomID()
		assert.Regexp(t, pattern, id)
		seen[id] = struct{}{}
	}

	assert.Greater(t, len(seen), 1)
}
