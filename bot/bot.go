package bot

import (
	"fmt"
	"sync/atomic"

	"discord-warn-bot/commands"
	"discord-warn-bot/model"
	"discord-warn-bot/moderation"
	"discord-warn-bot/utils"
	"discord-warn-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	Moderation         *moderation.Service
	Store              database.DocumentStore
	scheduler          *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

// New builds the bot from its configuration and an opened store. The ledger
// document is loaded once here and kept in memory afterwards.
func New(cfg *model.Config, store database.DocumentStore) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.Client = utils.GlobalHTTPClient

	data, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load warnings data: %w", err)
	}
	catalog := moderation.LoadRuleCatalog(cfg.RulesFile)
	log.Info().Int("rules", len(catalog.Rules())).Int("ladder_tiers", catalog.Ladder().Len()).Msg("Rule catalog loaded")

	platform := NewDiscordPlatform(dg, cfg.HistoryChannelID, cfg.VerifiedRoleID, cfg.MutedRoleName)
	b := &Bot{
		Session:    dg,
		Moderation: moderation.NewService(data, store, platform, catalog),
		Store:      store,
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) Close() {
	log.Info().Msg("Gracefully shutting down.")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing Discord session")
	}
	if err := b.Store.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing store")
	}
}

func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.GenerateCommands()
	log.Info().Str("guild", guildID).Int("count", len(cmds)).Msg("Registering commands")
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("Cannot update commands")
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registered...)
}

// ReloadRules re-reads the rules file and swaps the catalog in place.
func (b *Bot) ReloadRules() {
	catalog := moderation.LoadRuleCatalog(b.GetConfig().RulesFile)
	b.Moderation.SetCatalog(catalog)
	log.Info().Int("rules", len(catalog.Rules())).Msg("Rule catalog reloaded")
}
