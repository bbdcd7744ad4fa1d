package commands

import (
	"discord-warn-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns every command registered in a moderated guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Warn,
		defs.WarnUserContext,
		defs.Note,
		defs.Clear,
		defs.UserHistory,
		defs.ModStatus,
	}
}
