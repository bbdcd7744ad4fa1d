package utils

import "github.com/bwmarrin/discordgo"

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// IsModerator reports whether a guild member may use the moderation
// commands: either they hold one of the configured admin roles or their
// resolved permissions include Administrator.
func IsModerator(member *discordgo.Member, adminRoleIDs []string) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, roleID := range member.Roles {
		if contains(adminRoleIDs, roleID) {
			return true
		}
	}
	return false
}
