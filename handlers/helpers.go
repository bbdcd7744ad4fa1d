package handlers

import (
	"errors"
	"fmt"
	"strings"

	"discord-warn-bot/bot"
	"discord-warn-bot/moderation"
	"discord-warn-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	warnModalPrefix = "warn_modal:"
	reasonInputID   = "reason"
)

func warnModalID(userID string) string {
	return warnModalPrefix + userID
}

func parseWarnModalID(customID string) (string, bool) {
	userID, ok := strings.CutPrefix(customID, warnModalPrefix)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// requireModerator answers the interaction itself when the invoker may not
// moderate.
func requireModerator(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "此命令只能在服务器中使用。")
		return false
	}
	if !utils.IsModerator(i.Member, b.GetConfig().AdminRoleIDs) {
		utils.SendErrorResponse(s, i, "你没有权限使用此命令。")
		return false
	}
	return true
}

func actorFromUser(u *discordgo.User) moderation.Actor {
	if u == nil {
		return moderation.Actor{}
	}
	return moderation.Actor{ID: u.ID, Name: u.Username, IsBot: u.Bot}
}

// commandTarget resolves the member a command points at: the context-menu
// target or the "user" option.
func commandTarget(data discordgo.ApplicationCommandInteractionData) *discordgo.User {
	id := data.TargetID
	if id == "" {
		opt := data.GetOption("user")
		if opt == nil {
			return nil
		}
		id, _ = opt.Value.(string)
	}
	if id == "" {
		return nil
	}
	if data.Resolved != nil {
		if u, ok := data.Resolved.Users[id]; ok {
			return u
		}
	}
	return &discordgo.User{ID: id}
}

func stringOption(data discordgo.ApplicationCommandInteractionData, name string) string {
	if opt := data.GetOption(name); opt != nil {
		return opt.StringValue()
	}
	return ""
}

// modalValue finds a text input by custom ID in a submitted modal.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

func guildName(s *discordgo.Session, guildID string) string {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil && g.Name != "" {
			return g.Name
		}
	}
	return guildID
}

// errorText turns a workflow error into the reply shown to the moderator.
func errorText(err error) string {
	switch {
	case errors.Is(err, moderation.ErrSelfTarget):
		return "你不能对自己执行此操作。"
	case errors.Is(err, moderation.ErrBotTarget):
		return "不能警告机器人。"
	case errors.Is(err, moderation.ErrEmptyReason):
		return "警告理由不能为空。"
	case errors.Is(err, moderation.ErrReasonTooLong):
		return fmt.Sprintf("理由过长，最多 %d 个字符。", moderation.MaxReasonLength)
	case errors.Is(err, moderation.ErrEmptyNote):
		return "备注内容不能为空。"
	case errors.Is(err, moderation.ErrInvalidCaseID):
		return "请提供有效的 Case ID。"
	case errors.Is(err, moderation.ErrMissingGuildID):
		return "此命令只能在服务器中使用。"
	case errors.Is(err, moderation.ErrCaseNotFound):
		return "未找到该 Case ID 对应的有效记录，或该记录已被清除。"
	case errors.Is(err, moderation.ErrPublishFailure):
		return "无法将记录发送到历史频道，操作已撤销。请检查机器人在该频道的权限。"
	default:
		return "操作失败：" + err.Error()
	}
}

func joinMessages(msgs []string) string {
	out := strings.Join(msgs, "\n")
	if r := []rune(out); len(r) > 2000 {
		out = string(r[:1999]) + "…"
	}
	return out
}
