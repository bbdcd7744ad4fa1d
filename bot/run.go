package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"discord-warn-bot/utils"

	"github.com/rs/zerolog/log"
)

// Run connects to Discord and blocks until SIGINT or SIGTERM. SIGHUP reloads
// the rule catalog.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	cfg := b.GetConfig()
	for _, guildID := range cfg.GuildIDs {
		b.RefreshCommands(guildID)
	}

	b.scheduler.Start()

	log.Info().Msg("Bot is now running. Press CTRL-C to exit.")
	if err := utils.LogInfo(cfg.Log.WebhookURL, "System", "Startup", "Bot has started successfully."); err != nil {
		log.Warn().Err(err).Msg("Failed to send startup log")
	}
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)
	for sig := range sc {
		if sig == syscall.SIGHUP {
			b.ReloadRules()
			continue
		}
		break
	}
	return nil
}
