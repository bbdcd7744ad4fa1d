package moderation

import (
	"context"
	"time"

	"discord-warn-bot/model"
)

// Audit embed colors.
const (
	ColorWarning = 0xE67E22
	ColorPunish  = 0xE74C3C
	ColorCleared = 0x607D8B
	ColorInfo    = 0x3498DB
)

type AuditField struct {
	Name   string
	Value  string
	Inline bool
}

// AuditMessage is what the workflows hand to the platform for the history
// feed or a direct message. A message with only Content is sent as plain text.
type AuditMessage struct {
	Content     string
	Title       string
	Description string
	Color       int
	Fields      []AuditField
	Footer      string
	Timestamp   time.Time
}

// Platform is the chat-platform surface the workflows depend on. Every
// method returns a *PlatformError on failure.
type Platform interface {
	PublishAudit(ctx context.Context, guildID string, msg AuditMessage) (messageID string, err error)
	// AnnotateAudit appends a note to an already published audit message and
	// greys it out.
	AnnotateAudit(ctx context.Context, guildID, messageID, annotation string) error
	NotifyUser(ctx context.Context, guildID, userID string, msg AuditMessage) error

	ApplyMuteRole(ctx context.Context, guildID, userID, reason string) error
	// RemoveMuteRole returns ErrRoleNotHeld when the member no longer has it.
	RemoveMuteRole(ctx context.Context, guildID, userID, reason string) error

	HasVerifiedRole(ctx context.Context, guildID, userID string) (bool, error)
	RemoveVerifiedRole(ctx context.Context, guildID, userID, reason string) error
	RestoreVerifiedRole(ctx context.Context, guildID, userID, reason string) error

	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the wall clock in UTC.
var SystemClock Clock = systemClock{}

// Store persists the whole ledger document.
type Store interface {
	Load() (*model.WarningData, error)
	Save(data *model.WarningData) error
}

// Actor identifies a moderator or a target user.
type Actor struct {
	ID    string
	Name  string
	IsBot bool
}

// Mention renders the actor as a Discord mention.
func (a Actor) Mention() string {
	return "<@" + a.ID + ">"
}
