package moderation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

// MaxReasonLength matches the reason modal's limit.
const MaxReasonLength = 512

// WarningRequest is one moderator's warning against a member.
type WarningRequest struct {
	GuildID   string
	GuildName string
	Moderator Actor
	Target    Actor
	RawReason string
}

// WarningResult summarizes a recorded warning.
type WarningResult struct {
	CaseID              string
	TotalWarnings       int
	PerRuleViolations   map[string]int
	RuleID              string
	DisplayedReason     string
	Notified            bool
	PersistenceDegraded bool
	// Messages are the human-readable outcomes to relay to the moderator,
	// punishment results included.
	Messages []string
}

type resolvedReason struct {
	display    string
	ruleID     *string
	directives []Directive
}

// resolveReason maps a purely numeric input to its rule. Anything else, or an
// unknown rule number, is used verbatim.
func (s *Service) resolveReason(raw string) resolvedReason {
	out := resolvedReason{display: raw}
	trimmed := strings.TrimSpace(raw)
	if !isDigits(trimmed) {
		return out
	}
	rule, ok := s.catalog.Lookup(trimmed)
	if !ok {
		return out
	}
	text := rule.Text
	if text == "" {
		text = "规则描述未找到。"
	}
	id := trimmed
	out.display = fmt.Sprintf("规则 %s: %s", id, text)
	out.ruleID = &id
	if rule.ActionType == model.RuleSpecificAction {
		out.directives = ParseDirectives(rule.Actions)
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validateWarning(req WarningRequest) error {
	if req.GuildID == "" {
		return ErrMissingGuildID
	}
	if req.Target.IsBot {
		return ErrBotTarget
	}
	if req.Target.ID == req.Moderator.ID {
		return ErrSelfTarget
	}
	if strings.TrimSpace(req.RawReason) == "" {
		return ErrEmptyReason
	}
	if utf8.RuneCountInString(req.RawReason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	return nil
}

// RecordWarning appends a warning, publishes it to the history feed, notifies
// the member and applies whatever punishment the warning triggers.
//
// The audit publish is the only all-or-nothing step: if it fails the entry is
// removed again and ErrPublishFailure is returned with the ledger unchanged.
func (s *Service) RecordWarning(ctx context.Context, req WarningRequest) (*WarningResult, error) {
	if err := validateWarning(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reason := s.resolveReason(req.RawReason)
	caseID := s.uniqueCaseID(req.GuildID)
	now := s.clock.Now()

	prev := s.ledger.User(req.GuildID, req.Target.ID)
	var prevTotal, prevLen int
	var prevPerRule map[string]int
	if prev != nil {
		prevTotal, prevPerRule, prevLen = prev.TotalWarnings, prev.PerRuleViolations, len(prev.Entries)
	}

	rec, newGuild, newUser := s.ledger.ensureUser(req.GuildID, req.Target.ID)
	entry := &model.Entry{
		EntryType:     model.EntryWarning,
		Status:        model.StatusActive,
		CaseID:        caseID,
		Timestamp:     now.Unix(),
		OperatorID:    model.Snowflake(req.Moderator.ID),
		OperatorName:  req.Moderator.Name,
		ReasonDisplay: reason.display,
		RuleIDMatched: reason.ruleID,
		OriginalInput: req.RawReason,
	}
	rec.Entries = append(rec.Entries, entry)
	refreshCounters(rec)

	msgID, err := s.platform.PublishAudit(ctx, req.GuildID, warningAuditMessage(req, entry, rec.TotalWarnings, now))
	if err != nil {
		rec.Entries[prevLen] = nil
		rec.Entries = rec.Entries[:prevLen]
		rec.TotalWarnings, rec.PerRuleViolations = prevTotal, prevPerRule
		if newUser {
			delete(s.ledger.data.Warnings[req.GuildID], req.Target.ID)
		}
		if newGuild {
			delete(s.ledger.data.Warnings, req.GuildID)
		}
		publishRollbacks.Inc()
		log.Error().Err(err).Str("guild", req.GuildID).Str("user", req.Target.ID).Str("case", caseID).
			Msg("Failed to publish warning to history channel, rolled back")
		return nil, fmt.Errorf("%w: %v", ErrPublishFailure, err)
	}
	entry.HistoryMessageID = model.Snowflake(msgID)
	warningsRecorded.Inc()

	res := &WarningResult{
		CaseID:            caseID,
		TotalWarnings:     rec.TotalWarnings,
		PerRuleViolations: copyCounts(rec.PerRuleViolations),
		RuleID:            entry.RuleID(),
		DisplayedReason:   reason.display,
	}

	if !s.persist() {
		res.PersistenceDegraded = true
		res.Messages = append(res.Messages, "警告：保存警告数据时发生错误。警告已记录但可能不会持久保存。")
	}

	if err := s.platform.NotifyUser(ctx, req.GuildID, req.Target.ID, warningNotice(req, entry, rec.TotalWarnings, now)); err != nil {
		log.Info().Err(err).Str("user", req.Target.ID).Msg("Could not DM warned user")
		res.Messages = append(res.Messages, fmt.Sprintf("已成功警告用户 %s (Case ID: %s)，但无法通过私信通知（可能已关闭私信）。", req.Target.Mention(), caseID))
	} else {
		res.Notified = true
		res.Messages = append(res.Messages, fmt.Sprintf("已成功警告用户 %s (Case ID: %s)，并已通过私信通知。", req.Target.Mention(), caseID))
	}

	log.Info().Str("guild", req.GuildID).Str("user", req.Target.ID).Str("case", caseID).
		Int("total", rec.TotalWarnings).Str("rule", entry.RuleID()).Msg("Warning recorded")

	outcomes := s.evaluate(ctx, PunishmentRequest{
		GuildID:       req.GuildID,
		GuildName:     req.GuildName,
		Moderator:     req.Moderator,
		Target:        req.Target,
		RuleID:        entry.RuleID(),
		ActiveCount:   rec.TotalWarnings,
		Directives:    reason.directives,
		TriggerCaseID: caseID,
	})
	res.Messages = append(res.Messages, outcomes...)
	return res, nil
}

func warningAuditMessage(req WarningRequest, e *model.Entry, total int, now time.Time) AuditMessage {
	fields := []AuditField{
		{Name: "用户", Value: fmt.Sprintf("%s (%s)", req.Target.Mention(), req.Target.ID)},
		{Name: "操作者", Value: fmt.Sprintf("%s (%s)", req.Moderator.Mention(), req.Moderator.ID)},
		{Name: "理由", Value: e.ReasonDisplay},
	}
	if id := e.RuleID(); id != "" {
		fields = append(fields, AuditField{Name: "涉及规则编号", Value: id, Inline: true})
	}
	fields = append(fields, AuditField{Name: "当前有效警告总数", Value: strconv.Itoa(total), Inline: true})
	return AuditMessage{
		Title:     fmt.Sprintf("用户警告记录 (Case ID: %s)", e.CaseID),
		Color:     ColorWarning,
		Fields:    fields,
		Footer:    "Case ID: " + e.CaseID,
		Timestamp: now,
	}
}

func warningNotice(req WarningRequest, e *model.Entry, total int, now time.Time) AuditMessage {
	var fields []AuditField
	if req.GuildName != "" {
		fields = append(fields, AuditField{Name: "服务器", Value: req.GuildName})
	}
	fields = append(fields,
		AuditField{Name: "理由", Value: e.ReasonDisplay},
		AuditField{Name: "警告ID", Value: e.CaseID, Inline: true},
		AuditField{Name: "当前有效警告总数", Value: strconv.Itoa(total), Inline: true},
	)
	return AuditMessage{
		Title:     "您收到了一条警告",
		Color:     ColorPunish,
		Fields:    fields,
		Footer:    "如有疑问，请联系管理员",
		Timestamp: now,
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
