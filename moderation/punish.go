package moderation

import (
	"context"
	"fmt"
	"time"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

// PunishmentRequest is the input to punishment evaluation.
type PunishmentRequest struct {
	GuildID       string
	GuildName     string
	Moderator     Actor
	Target        Actor
	RuleID        string
	ActiveCount   int
	Directives    []Directive
	TriggerCaseID string
}

// Evaluate applies rule-specific directives or, failing those, the general
// ladder, and returns the outcome messages.
func (s *Service) Evaluate(ctx context.Context, req PunishmentRequest) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluate(ctx, req)
}

func (s *Service) evaluate(ctx context.Context, req PunishmentRequest) []string {
	var out []string
	actionTaken := false

	for _, d := range req.Directives {
		switch d.Kind {
		case DirectiveBan:
			actionTaken = true
			out = append(out, s.banForRule(ctx, req, d))
		case DirectiveRevokeAdvisory:
			actionTaken = true
			out = append(out, fmt.Sprintf("规则 %s 要求撤销 %s 的相关身份组%s，请管理员手动处理。", req.RuleID, req.Target.Mention(), detailSuffix(d.Details)))
		case DirectiveMonitor:
			out = append(out, fmt.Sprintf("规则 %s 仅要求观察 %s%s，未执行处罚。", req.RuleID, req.Target.Mention(), detailSuffix(d.Details)))
		case DirectiveUnknown:
			log.Warn().Str("rule", req.RuleID).Str("type", d.RawType).Msg("Unknown rule action type, ignored")
			out = append(out, fmt.Sprintf("警告：规则 %s 含有未知的动作类型 \"%s\"，已忽略。", req.RuleID, d.RawType))
		}
	}
	if actionTaken {
		return out
	}

	tier, ok := s.catalog.Ladder().Select(req.ActiveCount)
	if !ok {
		return out
	}

	switch tier.Action {
	case model.LadderMute:
		minutes := tier.TotalMinutes()
		if minutes <= 0 {
			log.Warn().Int("threshold", tier.Threshold).Int("minutes", minutes).Msg("Invalid mute duration on ladder tier")
			return out
		}
		out = append(out, s.applyMute(ctx, req, minutes))
	case model.LadderRemoveTemporary:
		out = append(out, s.kick(ctx, req, tier))
	case model.LadderBanPermanent:
		out = append(out, s.banForLadder(ctx, req, tier))
	default:
		log.Warn().Str("action", string(tier.Action)).Msg("Ladder tier has unknown action")
		out = append(out, fmt.Sprintf("警告：处罚阶梯中的动作 \"%s\" 无法识别，未执行处罚。", tier.Action))
	}
	return out
}

func detailSuffix(details string) string {
	if details == "" {
		return ""
	}
	return "（" + details + "）"
}

func (s *Service) applyMute(ctx context.Context, req PunishmentRequest, minutes int) string {
	reason := fmt.Sprintf("Muted for %d minutes", minutes)

	hadVerified, err := s.platform.HasVerifiedRole(ctx, req.GuildID, req.Target.ID)
	if err != nil {
		log.Warn().Err(err).Str("user", req.Target.ID).Msg("Could not check verified role before mute")
		hadVerified = false
	}
	verifiedRemoved := false
	if hadVerified {
		if err := s.platform.RemoveVerifiedRole(ctx, req.GuildID, req.Target.ID, reason); err != nil {
			punishmentsApplied.WithLabelValues("mute", "failed").Inc()
			log.Error().Err(err).Str("user", req.Target.ID).Msg("Failed to remove verified role for mute")
			return fmt.Sprintf("尝试禁言 %s 时失败: %s。", req.Target.Mention(), describePlatformError(err))
		}
		verifiedRemoved = true
	}

	if err := s.platform.ApplyMuteRole(ctx, req.GuildID, req.Target.ID, reason); err != nil {
		punishmentsApplied.WithLabelValues("mute", "failed").Inc()
		log.Error().Err(err).Str("user", req.Target.ID).Msg("Failed to apply mute role")
		if verifiedRemoved {
			if rerr := s.platform.RestoreVerifiedRole(ctx, req.GuildID, req.Target.ID, "Mute failed, restoring verified role"); rerr != nil {
				log.Error().Err(rerr).Str("user", req.Target.ID).Msg("Failed to restore verified role after failed mute")
			}
		}
		return fmt.Sprintf("尝试禁言 %s 时失败: %s。", req.Target.Mention(), describePlatformError(err))
	}

	now := s.clock.Now().UTC()
	unmuteAt := now.Add(time.Duration(minutes) * time.Minute)
	record := &model.MuteRecord{
		UserID:          model.Snowflake(req.Target.ID),
		GuildID:         model.Snowflake(req.GuildID),
		MutedAt:         model.NewFlexTime(now),
		UnmuteAt:        model.NewFlexTime(unmuteAt),
		DurationMinutes: minutes,
		MutedBy:         model.Snowflake(req.Moderator.ID),
		CaseIDsForMute:  []string{},
	}
	if existing := s.ledger.Mute(req.GuildID, req.Target.ID); existing != nil {
		record.CaseIDsForMute = append(record.CaseIDsForMute, existing.CaseIDsForMute...)
		verifiedRemoved = verifiedRemoved || existing.ShouldRestoreVerifiedRole()
	}
	if req.TriggerCaseID != "" && !containsString(record.CaseIDsForMute, req.TriggerCaseID) {
		record.CaseIDsForMute = append(record.CaseIDsForMute, req.TriggerCaseID)
	}
	record.VerifiedRoleRemoved = &verifiedRemoved
	s.ledger.setMute(record)
	punishmentsApplied.WithLabelValues("mute", "ok").Inc()

	log.Info().Str("guild", req.GuildID).Str("user", req.Target.ID).Int("minutes", minutes).
		Time("unmute_at", unmuteAt).Msg("Member muted")

	var msg string
	if s.persist() {
		msg = fmt.Sprintf("已禁言 %s %d 分钟。将在 <t:%d:f> 解除。", req.Target.Mention(), minutes, unmuteAt.Unix())
	} else {
		msg = fmt.Sprintf("已禁言 %s %d 分钟，但保存禁言数据时发生错误。", req.Target.Mention(), minutes)
	}

	line := fmt.Sprintf("%s (%s) 已被禁言 %d 分钟。将在 <t:%d:f> 解除。", req.Target.Mention(), req.Target.ID, minutes, unmuteAt.Unix())
	if _, err := s.platform.PublishAudit(ctx, req.GuildID, AuditMessage{Content: line}); err != nil {
		log.Warn().Err(err).Msg("Failed to publish mute audit line")
	}

	notice := AuditMessage{
		Title: "您已被禁言",
		Color: ColorPunish,
		Fields: []AuditField{
			{Name: "持续时间", Value: fmt.Sprintf("%d 分钟", minutes), Inline: true},
			{Name: "解除时间", Value: fmt.Sprintf("<t:%d:f>", unmuteAt.Unix()), Inline: true},
		},
		Footer:    "如有疑问，请联系管理员",
		Timestamp: now,
	}
	if req.GuildName != "" {
		notice.Fields = append([]AuditField{{Name: "服务器", Value: req.GuildName}}, notice.Fields...)
	}
	if err := s.platform.NotifyUser(ctx, req.GuildID, req.Target.ID, notice); err != nil {
		log.Debug().Err(err).Str("user", req.Target.ID).Msg("Could not DM muted user")
	}
	return msg
}

func (s *Service) kick(ctx context.Context, req PunishmentRequest, tier model.PunishmentTier) string {
	reason := renderTemplate(tier.DescriptionTemplate, "违反群规", req.ActiveCount, req.RuleID)
	if err := s.platform.Kick(ctx, req.GuildID, req.Target.ID, reason); err != nil {
		punishmentsApplied.WithLabelValues("remove_temporary", "failed").Inc()
		log.Error().Err(err).Str("user", req.Target.ID).Msg("Failed to kick member")
		return fmt.Sprintf("无法将 %s 移出服务器: %s。", req.Target.Mention(), describePlatformError(err))
	}
	punishmentsApplied.WithLabelValues("remove_temporary", "ok").Inc()

	rejoin := "该用户可以重新加入服务器。"
	if tier.CanRejoin != nil && !*tier.CanRejoin {
		rejoin = "该处罚标记为不可重新加入，如需阻止其重新加入请手动处理。"
	}
	s.publishLine(ctx, req.GuildID, fmt.Sprintf("%s (%s) 已被移出服务器。原因: %s", req.Target.Mention(), req.Target.ID, reason))
	return fmt.Sprintf("已将 %s 移出服务器 (原因: %s)。%s", req.Target.Mention(), reason, rejoin)
}

func (s *Service) banForLadder(ctx context.Context, req PunishmentRequest, tier model.PunishmentTier) string {
	reason := renderTemplate(tier.DescriptionTemplate, "违反群规", req.ActiveCount, req.RuleID)
	return s.ban(ctx, req, reason, "ban_permanent")
}

func (s *Service) banForRule(ctx context.Context, req PunishmentRequest, d Directive) string {
	reason := renderTemplate(d.Reason, "违反规则 {rule_id}", req.ActiveCount, req.RuleID)
	return s.ban(ctx, req, reason, "permanent_remove_from_group")
}

func (s *Service) ban(ctx context.Context, req PunishmentRequest, reason, label string) string {
	if err := s.platform.Ban(ctx, req.GuildID, req.Target.ID, reason); err != nil {
		punishmentsApplied.WithLabelValues(label, "failed").Inc()
		log.Error().Err(err).Str("user", req.Target.ID).Msg("Failed to ban member")
		return fmt.Sprintf("无法将 %s 永久封禁: %s。", req.Target.Mention(), describePlatformError(err))
	}
	punishmentsApplied.WithLabelValues(label, "ok").Inc()
	s.publishLine(ctx, req.GuildID, fmt.Sprintf("%s (%s) 已被永久封禁。原因: %s", req.Target.Mention(), req.Target.ID, reason))
	return fmt.Sprintf("已将 %s 永久封禁 (原因: %s)。", req.Target.Mention(), reason)
}

// publishLine posts a plain audit line; failures are only logged.
func (s *Service) publishLine(ctx context.Context, guildID, line string) {
	if _, err := s.platform.PublishAudit(ctx, guildID, AuditMessage{Content: line}); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Failed to publish audit line")
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
