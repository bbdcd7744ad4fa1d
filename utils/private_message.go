package utils

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// SendPrivateEmbedMessage sends a direct message with an embed to a user.
func SendPrivateEmbedMessage(s *discordgo.Session, userID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) error {
	channel, err := s.UserChannelCreate(userID, options...)
	if err != nil {
		return fmt.Errorf("error creating private channel with user %s: %w", userID, err)
	}
	if _, err = s.ChannelMessageSendEmbed(channel.ID, embed, options...); err != nil {
		return fmt.Errorf("error sending private embed message to user %s: %w", userID, err)
	}
	return nil
}
