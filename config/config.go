package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"discord-warn-bot/model"
	"discord-warn-bot/utils"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. WARNBOT_STORAGE_BACKEND.
const EnvPrefix = "WARNBOT"

var ErrMissingToken = errors.New("bot token is not set (WARNBOT_BOT_TOKEN or BOT_TOKEN)")

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot_token", "")
	v.SetDefault("guild_ids", []string{})
	v.SetDefault("admin_role_ids", []string{})
	v.SetDefault("history_channel_id", "")
	v.SetDefault("verified_role_id", "")
	v.SetDefault("muted_role_name", "Muted")
	v.SetDefault("rules_file", "data/rules_database.json")
	v.SetDefault("unmute_interval", time.Minute)
	v.SetDefault("metrics_listen", "")
	v.SetDefault("storage.backend", "json")
	v.SetDefault("storage.json_path", "data/warnings_data.json")
	v.SetDefault("storage.sqlite_path", "data/warnings.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.webhook_url", "")
}

// Load reads .env, then the config file at path (or config.{yaml,json,toml}
// in . or data/ when path is empty), then environment overrides.
func Load(path string) (*model.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not parse .env file")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The token also keeps its historical unprefixed name.
	if err := v.BindEnv("bot_token", EnvPrefix+"_BOT_TOKEN", "BOT_TOKEN"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("data")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			log.Info().Msg("No config file found, relying on environment variables")
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Info().Str("path", used).Msg("Loaded config file")
	}

	var cfg model.Config
	hook := mapstructure.ComposeDecodeHookFunc(durationHook, mapstructure.StringToSliceHookFunc(","))
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.GuildIDs = compact(cfg.GuildIDs)
	cfg.AdminRoleIDs = compact(cfg.AdminRoleIDs)
	return &cfg, nil
}

// Validate checks the settings the bot cannot start without.
func Validate(cfg *model.Config) error {
	if cfg.BotToken == "" {
		return ErrMissingToken
	}
	if cfg.HistoryChannelID == "" {
		log.Warn().Msg("history_channel_id is not set, warnings cannot be recorded")
	}
	if len(cfg.AdminRoleIDs) == 0 {
		log.Warn().Msg("admin_role_ids is empty, only server administrators can moderate")
	}
	if cfg.UnmuteInterval < time.Second {
		return fmt.Errorf("unmute_interval %s is too short", cfg.UnmuteInterval)
	}
	return nil
}

// durationHook decodes duration strings, accepting a day component ("1d").
func durationHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String || t != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	return utils.ParseDuration(data.(string))
}

func compact(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
