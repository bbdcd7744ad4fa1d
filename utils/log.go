package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"discord-warn-bot/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

type DiscordEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DiscordEmbed struct {
	Title  string              `json:"title"`
	Color  int                 `json:"color"`
	Fields []DiscordEmbedField `json:"fields"`
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func sendLog(client *http.Client, webhookURL string, level LogLevel, module, operation, extraInfo string) error {
	embed := DiscordEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []DiscordEmbedField{
			{Name: "模块", Value: module},
			{Name: "操作", Value: operation},
			{Name: "附加信息", Value: extraInfo},
		},
	}

	jsonPayload, err := json.Marshal(DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}
	return nil
}

// LogInfo posts an informational embed to the log webhook. It is a no-op
// when no webhook is configured.
func LogInfo(webhookURL, module, operation, extraInfo string) error {
	if webhookURL == "" {
		return nil
	}
	return sendLog(GlobalHTTPClient, webhookURL, Info, module, operation, extraInfo)
}

// webhookHook forwards warnings and errors to a Discord webhook from a single
// background worker. Events are dropped when the queue is full.
type webhookHook struct {
	url   string
	queue chan webhookEvent
}

type webhookEvent struct {
	level LogLevel
	msg   string
	at    time.Time
}

func newWebhookHook(url string) *webhookHook {
	h := &webhookHook{url: url, queue: make(chan webhookEvent, 64)}
	go h.run()
	return h
}

func (h *webhookHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	var l LogLevel
	switch {
	case level >= zerolog.ErrorLevel:
		l = Error
	case level == zerolog.WarnLevel:
		l = Warn
	default:
		return
	}
	select {
	case h.queue <- webhookEvent{level: l, msg: msg, at: time.Now()}:
	default:
	}
}

func (h *webhookHook) run() {
	for ev := range h.queue {
		if err := sendLog(GlobalHTTPClient, h.url, ev.level, "warnbot", ev.msg, ev.at.Format(time.RFC3339)); err != nil {
			fmt.Fprintf(os.Stderr, "log webhook: %v\n", err)
		}
	}
}

// SetupLogger configures the global zerolog logger.
func SetupLogger(cfg model.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.WebhookURL != "" {
		logger = logger.Hook(newWebhookHook(cfg.WebhookURL))
	}
	log.Logger = logger
}
