package handlers

import (
	"context"
	"fmt"
	"time"

	"discord-warn-bot/bot"
	"discord-warn-bot/moderation"
	"discord-warn-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Platform calls made by a workflow share this deadline.
const workflowTimeout = 30 * time.Second

// HandleWarnCommand opens the reason modal for /warn and the user context
// menu. The warning itself is recorded on modal submit.
func HandleWarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	target := commandTarget(i.ApplicationCommandData())
	if target == nil {
		utils.SendErrorResponse(s, i, "请指定要警告的用户。")
		return
	}
	if target.ID == i.Member.User.ID {
		utils.SendErrorResponse(s, i, errorText(moderation.ErrSelfTarget))
		return
	}
	if target.Bot {
		utils.SendErrorResponse(s, i, errorText(moderation.ErrBotTarget))
		return
	}

	title := "警告用户"
	if target.Username != "" {
		title = "警告 " + target.Username
	}
	if r := []rune(title); len(r) > 45 {
		title = string(r[:45])
	}
	err := utils.SendModal(s, i, warnModalID(target.ID), title,
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    reasonInputID,
				Label:       "理由（填写规则编号可自动匹配规则）",
				Style:       discordgo.TextInputParagraph,
				Placeholder: "例如：3 或 在公共频道刷屏",
				Required:    true,
				MaxLength:   moderation.MaxReasonLength,
			},
		}},
	)
	if err != nil {
		log.Error().Err(err).Str("target", target.ID).Msg("Failed to open warn modal")
	}
}

// HandleWarnModalSubmit records the warning entered in the reason modal.
func HandleWarnModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	data := i.ModalSubmitData()
	targetID, ok := parseWarnModalID(data.CustomID)
	if !ok {
		utils.SendErrorResponse(s, i, "无效的表单。")
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Error().Err(err).Msg("Failed to defer interaction")
		return
	}

	target := moderation.Actor{ID: targetID}
	if member, err := s.GuildMember(i.GuildID, targetID); err == nil && member.User != nil {
		target = actorFromUser(member.User)
	} else if err != nil {
		log.Debug().Err(err).Str("target", targetID).Msg("Target is not a guild member, warning by ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), workflowTimeout)
	defer cancel()
	res, err := b.Moderation.RecordWarning(ctx, moderation.WarningRequest{
		GuildID:   i.GuildID,
		GuildName: guildName(s, i.GuildID),
		Moderator: actorFromUser(i.Member.User),
		Target:    target,
		RawReason: modalValue(data, reasonInputID),
	})
	if err != nil {
		if !moderation.IsValidation(err) {
			log.Error().Err(err).Str("guild", i.GuildID).Str("target", targetID).Msg("Warning failed")
		}
		utils.SendFollowUpError(s, i.Interaction, errorText(err))
		return
	}
	utils.SendFollowUp(s, i.Interaction, joinMessages(res.Messages))
}

func HandleNoteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	data := i.ApplicationCommandData()
	target := commandTarget(data)
	if target == nil {
		utils.SendErrorResponse(s, i, "请指定用户。")
		return
	}

	res, err := b.Moderation.AddNote(context.Background(), moderation.NoteRequest{
		GuildID:   i.GuildID,
		Moderator: actorFromUser(i.Member.User),
		Target:    actorFromUser(target),
		Text:      stringOption(data, "text"),
	})
	if err != nil {
		utils.SendErrorResponse(s, i, errorText(err))
		return
	}
	msg := fmt.Sprintf("已为 <@%s> 添加备注 (Case ID: %s)。", target.ID, res.CaseID)
	if res.PersistenceDegraded {
		msg += "\n警告：保存数据时发生错误，备注可能不会持久保存。"
	}
	utils.SendSimpleResponse(s, i, msg)
}

func HandleClearCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Error().Err(err).Msg("Failed to defer interaction")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), workflowTimeout)
	defer cancel()
	res, err := b.Moderation.ClearEntry(ctx, moderation.ClearRequest{
		GuildID:  i.GuildID,
		CaseID:   stringOption(i.ApplicationCommandData(), "case_id"),
		Operator: actorFromUser(i.Member.User),
	})
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, errorText(err))
		return
	}
	utils.SendFollowUp(s, i.Interaction, joinMessages(res.Messages))
}

func HandleUserHistoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !requireModerator(s, i, b) {
		return
	}
	target := commandTarget(i.ApplicationCommandData())
	if target == nil {
		utils.SendErrorResponse(s, i, "请指定用户。")
		return
	}
	name := target.Username
	if name == "" {
		name = "<@" + target.ID + ">"
	}

	view := b.Moderation.UserHistory(i.GuildID, target.ID)
	embed := bot.ToEmbed(view.Render(name))
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to send user history")
	}
}
