package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext_IsAdmin(t *testing.T) {
	assert.True(t, UserContext{Username: "a", Role: AdminRole}.IsAdmin())
	assert.False(t, UserContext{Username: "u", Role: UserRole}.IsAdmin())
	assert.False(t, UserContext{}.IsAdmin())
}
