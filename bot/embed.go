package bot

import (
	"time"

	"discord-warn-bot/moderation"

	"github.com/bwmarrin/discordgo"
)

// ToEmbed converts a workflow message to a Discord embed. Messages with only
// Content have no embed and ToEmbed returns nil.
func ToEmbed(msg moderation.AuditMessage) *discordgo.MessageEmbed {
	if msg.Title == "" && msg.Description == "" && len(msg.Fields) == 0 {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       msg.Color,
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  truncate(f.Value, 1024),
			Inline: f.Inline,
		})
	}
	if msg.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
	}
	return embed
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
