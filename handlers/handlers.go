package handlers

import (
	"strings"

	"discord-warn-bot/bot"
	"discord-warn-bot/model"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleWarnCommand(s, i, b)
		},
		"警告用户": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleWarnCommand(s, i, b)
		},
		"note": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleNoteCommand(s, i, b)
		},
		"clear": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleClearCommand(s, i, b)
		},
		"userhistory": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleUserHistoryCommand(s, i, b)
		},
		"modstatus": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleModStatusCommand(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", s.State.User.Username).Int("guilds", len(r.Guilds)).Msg("Logged in")
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionModalSubmit:
			if strings.HasPrefix(i.ModalSubmitData().CustomID, warnModalPrefix) {
				HandleWarnModalSubmit(s, i, b)
			}
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.User == nil || m.User.Bot {
			return
		}
		b.Moderation.RecordMemberActivity(m.GuildID, m.User.ID, model.ActivityJoin)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.User == nil || m.User.Bot {
			return
		}
		b.Moderation.RecordMemberActivity(m.GuildID, m.User.ID, model.ActivityLeave)
	})
}
