package model

import "time"

// StorageConfig 定义了账本文档的存储方式
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	JSONPath   string `mapstructure:"json_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig 定义了日志输出
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Pretty     bool   `mapstructure:"pretty"`
	WebhookURL string `mapstructure:"webhook_url"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken         string        `mapstructure:"bot_token"`
	GuildIDs         []string      `mapstructure:"guild_ids"`
	AdminRoleIDs     []string      `mapstructure:"admin_role_ids"`
	HistoryChannelID string        `mapstructure:"history_channel_id"`
	VerifiedRoleID   string        `mapstructure:"verified_role_id"`
	MutedRoleName    string        `mapstructure:"muted_role_name"`
	RulesFile        string        `mapstructure:"rules_file"`
	UnmuteInterval   time.Duration `mapstructure:"unmute_interval"`
	MetricsListen    string        `mapstructure:"metrics_listen"`
	Storage          StorageConfig `mapstructure:"storage"`
	Log              LogConfig     `mapstructure:"log"`
}
