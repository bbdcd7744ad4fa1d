package utils

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestIsModerator(t *testing.T) {
	admins := []string{"500", "501"}

	assert.False(t, IsModerator(nil, admins))
	assert.False(t, IsModerator(&discordgo.Member{Roles: []string{"1", "2"}}, admins))
	assert.True(t, IsModerator(&discordgo.Member{Roles: []string{"1", "501"}}, admins))
	assert.True(t, IsModerator(&discordgo.Member{Permissions: discordgo.PermissionAdministrator}, nil))
}
