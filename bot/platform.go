package bot

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"discord-warn-bot/moderation"
	"discord-warn-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// DiscordPlatform carries out moderation side effects through the Discord
// REST API.
type DiscordPlatform struct {
	session          *discordgo.Session
	historyChannelID string
	verifiedRoleID   string
	mutedRoleName    string

	mu         sync.Mutex
	mutedRoles map[string]string // guild ID -> role ID
}

func NewDiscordPlatform(s *discordgo.Session, historyChannelID, verifiedRoleID, mutedRoleName string) *DiscordPlatform {
	if mutedRoleName == "" {
		mutedRoleName = "Muted"
	}
	return &DiscordPlatform{
		session:          s,
		historyChannelID: historyChannelID,
		verifiedRoleID:   verifiedRoleID,
		mutedRoleName:    mutedRoleName,
		mutedRoles:       make(map[string]string),
	}
}

// classify maps a discordgo error onto the moderation error kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Message != nil {
			switch rest.Message.Code {
			case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
				return moderation.NewPlatformError(op, moderation.KindPermission, err)
			case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
				return moderation.NewPlatformError(op, moderation.KindNotFound, err)
			}
		}
		if rest.Response != nil {
			switch rest.Response.StatusCode {
			case http.StatusForbidden:
				return moderation.NewPlatformError(op, moderation.KindPermission, err)
			case http.StatusNotFound:
				return moderation.NewPlatformError(op, moderation.KindNotFound, err)
			}
		}
	}
	return moderation.NewPlatformError(op, moderation.KindTransport, err)
}

func (p *DiscordPlatform) PublishAudit(ctx context.Context, _ string, msg moderation.AuditMessage) (string, error) {
	if p.historyChannelID == "" {
		return "", moderation.NewPlatformError("publish audit", moderation.KindTransport, errors.New("history channel is not configured"))
	}
	send := &discordgo.MessageSend{Content: msg.Content}
	if embed := ToEmbed(msg); embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{embed}
	}
	m, err := p.session.ChannelMessageSendComplex(p.historyChannelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify("publish audit", err)
	}
	return m.ID, nil
}

// AnnotateAudit greys out the published embed and appends the annotation as
// a status field.
func (p *DiscordPlatform) AnnotateAudit(ctx context.Context, _ string, messageID, annotation string) error {
	if p.historyChannelID == "" || messageID == "" {
		return nil
	}
	m, err := p.session.ChannelMessage(p.historyChannelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("fetch audit message", err)
	}
	edit := discordgo.NewMessageEdit(p.historyChannelID, messageID)
	if len(m.Embeds) > 0 {
		embed := *m.Embeds[0]
		embed.Color = moderation.ColorCleared
		embed.Fields = append(append([]*discordgo.MessageEmbedField(nil), embed.Fields...), &discordgo.MessageEmbedField{
			Name:  "状态",
			Value: annotation,
		})
		edit.SetEmbed(&embed)
	} else {
		edit.SetContent(m.Content + "\n" + annotation)
	}
	if _, err := p.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return classify("annotate audit message", err)
	}
	return nil
}

func (p *DiscordPlatform) NotifyUser(ctx context.Context, _ string, userID string, msg moderation.AuditMessage) error {
	embed := ToEmbed(msg)
	if embed == nil {
		embed = &discordgo.MessageEmbed{Description: msg.Content}
	}
	if err := utils.SendPrivateEmbedMessage(p.session, userID, embed, discordgo.WithContext(ctx)); err != nil {
		return classify("notify user", err)
	}
	return nil
}

func (p *DiscordPlatform) ApplyMuteRole(ctx context.Context, guildID, userID, reason string) error {
	roleID, err := p.mutedRole(ctx, guildID, true)
	if err != nil {
		return err
	}
	err = p.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify("apply mute role", err)
}

func (p *DiscordPlatform) RemoveMuteRole(ctx context.Context, guildID, userID, reason string) error {
	roleID, err := p.mutedRole(ctx, guildID, false)
	if err != nil {
		return err
	}
	if roleID == "" {
		return moderation.NewPlatformError("remove mute role", moderation.KindRoleNotHeld, errors.New("muted role does not exist"))
	}
	held, err := p.memberHasRole(ctx, guildID, userID, roleID)
	if err != nil {
		return err
	}
	if !held {
		return moderation.NewPlatformError("remove mute role", moderation.KindRoleNotHeld, nil)
	}
	err = p.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify("remove mute role", err)
}

func (p *DiscordPlatform) HasVerifiedRole(ctx context.Context, guildID, userID string) (bool, error) {
	if p.verifiedRoleID == "" {
		return false, nil
	}
	return p.memberHasRole(ctx, guildID, userID, p.verifiedRoleID)
}

func (p *DiscordPlatform) RemoveVerifiedRole(ctx context.Context, guildID, userID, reason string) error {
	if p.verifiedRoleID == "" {
		return nil
	}
	err := p.session.GuildMemberRoleRemove(guildID, userID, p.verifiedRoleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify("remove verified role", err)
}

func (p *DiscordPlatform) RestoreVerifiedRole(ctx context.Context, guildID, userID, reason string) error {
	if p.verifiedRoleID == "" {
		return nil
	}
	err := p.session.GuildMemberRoleAdd(guildID, userID, p.verifiedRoleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify("restore verified role", err)
}

func (p *DiscordPlatform) Kick(ctx context.Context, guildID, userID, reason string) error {
	err := p.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
	return classify("kick", err)
}

func (p *DiscordPlatform) Ban(ctx context.Context, guildID, userID, reason string) error {
	err := p.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
	return classify("ban", err)
}

func (p *DiscordPlatform) memberHasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	member, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return false, classify("fetch member", err)
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

// mutedRole resolves the guild's mute role by name. With create set, a
// missing role is created and denied speaking in every channel.
func (p *DiscordPlatform) mutedRole(ctx context.Context, guildID string, create bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.mutedRoles[guildID]; ok {
		return id, nil
	}

	roles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify("list roles", err)
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, p.mutedRoleName) {
			p.mutedRoles[guildID] = r.ID
			return r.ID, nil
		}
	}
	if !create {
		return "", nil
	}

	noPerms := int64(0)
	role, err := p.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        p.mutedRoleName,
		Permissions: &noPerms,
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Create muted role"))
	if err != nil {
		return "", classify("create muted role", err)
	}
	log.Info().Str("guild", guildID).Str("role", role.ID).Msg("Created muted role")

	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Could not list channels to apply muted overwrites")
	}
	for _, ch := range channels {
		deny := mutedOverwrite(ch.Type)
		if deny == 0 {
			continue
		}
		if err := p.session.ChannelPermissionSet(ch.ID, role.ID, discordgo.PermissionOverwriteTypeRole, 0, deny, discordgo.WithContext(ctx)); err != nil {
			log.Warn().Err(err).Str("channel", ch.ID).Msg("Failed to set muted overwrite")
		}
	}

	p.mutedRoles[guildID] = role.ID
	return role.ID, nil
}

func mutedOverwrite(t discordgo.ChannelType) int64 {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews, discordgo.ChannelTypeGuildForum:
		return discordgo.PermissionSendMessages | discordgo.PermissionSendMessagesInThreads | discordgo.PermissionAddReactions
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return discordgo.PermissionVoiceSpeak
	}
	return 0
}

var _ moderation.Platform = (*DiscordPlatform)(nil)
