package main

import (
	"encoding/json"
	"fmt"
	"os"

	"discord-warn-bot/bot"
	"discord-warn-bot/config"
	"discord-warn-bot/handlers"
	"discord-warn-bot/model"
	"discord-warn-bot/moderation"
	"discord-warn-bot/utils"
	"discord-warn-bot/utils/database"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Exiting")
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "warnbot",
		Usage: "Discord warning and punishment bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (yaml, json or toml)",
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "connect to Discord and serve moderation commands",
			Action: runBot,
		},
		{
			Name:   "normalize-mutes",
			Usage:  "rewrite legacy numeric mute deadlines in the stored ledger",
			Action: runNormalizeMutes,
		},
		{
			Name:      "inspect",
			Usage:     "print ledger totals, or one member's history",
			ArgsUsage: "[guild-id user-id]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "journal",
					Usage: "print the latest `N` save journal rows (sqlite backend only)",
				},
			},
			Action: runInspect,
		},
	}
	app.DefaultCommand = "run"
	return app
}

func loadConfig(cctx *cli.Context) (*model.Config, error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, err
	}
	utils.SetupLogger(cfg.Log)
	return cfg, nil
}

// openService loads the ledger without a Discord session. Only operations
// that never reach the platform may be used on it.
func openService(cfg *model.Config) (*moderation.Service, database.DocumentStore, error) {
	store, err := database.Open(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	data, err := store.Load()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return moderation.NewService(data, store, nil, moderation.LoadRuleCatalog(cfg.RulesFile)), store, nil
}

func runBot(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	store, err := database.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}
	b, err := bot.New(cfg, store)
	if err != nil {
		store.Close()
		return fmt.Errorf("error creating bot: %w", err)
	}
	handlers.Register(b)
	defer b.Close()

	return b.Run()
}

func runNormalizeMutes(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	svc, store, err := openService(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := svc.NormalizeLegacyMutes()
	if err != nil {
		return err
	}
	fmt.Printf("normalized %d mute record(s)\n", n)
	return nil
}

func runInspect(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	svc, store, err := openService(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	enc := json.NewEncoder(cctx.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if n := cctx.Int("journal"); n > 0 {
		sqlite, ok := store.(*database.SQLiteStore)
		if !ok {
			return cli.Exit("the save journal is only kept by the sqlite backend", 1)
		}
		saves, err := sqlite.RecentSaves(n)
		if err != nil {
			return err
		}
		return enc.Encode(saves)
	}
	if cctx.NArg() == 0 {
		return enc.Encode(svc.Totals())
	}
	if cctx.NArg() != 2 {
		return cli.Exit("inspect takes either no arguments or <guild-id> <user-id>", 1)
	}
	return enc.Encode(svc.UserHistory(cctx.Args().Get(0), cctx.Args().Get(1)))
}
