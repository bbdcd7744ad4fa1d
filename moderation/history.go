package moderation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"discord-warn-bot/model"
)

// maxEmbedFields is Discord's per-embed field limit.
const maxEmbedFields = 25

// HistoryView is a member's active record.
type HistoryView struct {
	GuildID           string
	UserID            string
	Entries           []model.Entry
	TotalWarnings     int
	PerRuleViolations map[string]int
	Mute              *model.MuteRecord
}

// UserHistory returns the member's active entries oldest first.
func (s *Service) UserHistory(guildID, userID string) HistoryView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := HistoryView{GuildID: guildID, UserID: userID, PerRuleViolations: map[string]int{}}
	if rec := s.ledger.User(guildID, userID); rec != nil {
		for _, e := range rec.Entries {
			if e != nil && e.IsActive() {
				view.Entries = append(view.Entries, *e)
			}
		}
		view.TotalWarnings = rec.TotalWarnings
		view.PerRuleViolations = copyCounts(rec.PerRuleViolations)
	}
	sort.SliceStable(view.Entries, func(i, j int) bool {
		return view.Entries[i].Timestamp < view.Entries[j].Timestamp
	})
	if m := s.ledger.Mute(guildID, userID); m != nil {
		cp := *m
		cp.CaseIDsForMute = append([]string(nil), m.CaseIDsForMute...)
		view.Mute = &cp
	}
	return view
}

// OnlyNotes reports whether the active entries include notes but no warnings.
func (v HistoryView) OnlyNotes() bool {
	hasNote := false
	for _, e := range v.Entries {
		switch e.EntryType {
		case model.EntryWarning:
			return false
		case model.EntryNote:
			hasNote = true
		}
	}
	return hasNote
}

// Render builds the embed shown by /userhistory.
func (v HistoryView) Render(displayName string) AuditMessage {
	title := fmt.Sprintf("%s 的警告记录", displayName)
	if v.OnlyNotes() {
		title = fmt.Sprintf("%s 的备注记录", displayName)
	}
	msg := AuditMessage{Title: title, Color: ColorInfo}

	if len(v.Entries) == 0 {
		msg.Description = "该用户没有有效的警告或备注记录。"
		return msg
	}

	msg.Description = fmt.Sprintf("当前有效警告总数: **%d**", v.TotalWarnings)
	if len(v.PerRuleViolations) > 0 {
		rules := make([]string, 0, len(v.PerRuleViolations))
		for id := range v.PerRuleViolations {
			rules = append(rules, id)
		}
		sort.Slice(rules, func(i, j int) bool { return ruleLess(rules[i], rules[j]) })
		parts := make([]string, 0, len(rules))
		for _, id := range rules {
			parts = append(parts, fmt.Sprintf("规则 %s: %d 次", id, v.PerRuleViolations[id]))
		}
		msg.Description += "\n" + strings.Join(parts, "，")
	}
	if v.Mute != nil && v.Mute.UnmuteAt.Valid() {
		msg.Description += fmt.Sprintf("\n禁言中，将在 <t:%d:f> 解除。", v.Mute.UnmuteAt.Time.Unix())
	}

	for i, e := range v.Entries {
		if len(msg.Fields) == maxEmbedFields {
			msg.Footer = fmt.Sprintf("仅显示前 %d 条记录，共 %d 条。", maxEmbedFields, len(v.Entries))
			break
		}
		msg.Fields = append(msg.Fields, historyField(i+1, e))
	}
	return msg
}

func historyField(n int, e model.Entry) AuditField {
	switch e.EntryType {
	case model.EntryWarning:
	case model.EntryNote:
		return AuditField{
			Name:  fmt.Sprintf("%d. 备注 (Case ID: %s)", n, e.CaseID),
			Value: fmt.Sprintf("%s\n操作者: <@%s> · <t:%d:f>", e.Text, e.OperatorID, e.Timestamp),
		}
	case model.EntryJoinEvent:
		return AuditField{Name: fmt.Sprintf("%d. 加入服务器 (Case ID: %s)", n, e.CaseID), Value: fmt.Sprintf("用户加入了服务器。 · <t:%d:f>", e.Timestamp)}
	case model.EntryLeaveEvent:
		return AuditField{Name: fmt.Sprintf("%d. 离开服务器 (Case ID: %s)", n, e.CaseID), Value: fmt.Sprintf("用户离开了服务器。 · <t:%d:f>", e.Timestamp)}
	default:
		return AuditField{Name: fmt.Sprintf("%d. 未知类型 (Case ID: %s)", n, e.CaseID), Value: fmt.Sprintf("%s · <t:%d:f>", e.EntryType, e.Timestamp)}
	}
	value := e.DisplayReason()
	if id := e.RuleID(); id != "" {
		value += fmt.Sprintf("\n规则编号: %s", id)
	}
	value += fmt.Sprintf("\n操作者: <@%s> · <t:%d:f>", e.OperatorID, e.Timestamp)
	return AuditField{Name: fmt.Sprintf("%d. 警告 (Case ID: %s)", n, e.CaseID), Value: value}
}

// ruleLess orders numeric rule IDs numerically and anything else after them.
func ruleLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}

// Totals aggregates the ledger for status displays.
type Totals struct {
	Guilds         int
	Users          int
	ActiveWarnings int
	ActiveNotes    int
	ClearedEntries int
	ActiveMutes    int
}

func (s *Service) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	data := s.ledger.Data()
	t.Guilds = len(data.Warnings)
	for _, users := range data.Warnings {
		for _, rec := range users {
			if rec == nil {
				continue
			}
			t.Users++
			for _, e := range rec.Entries {
				switch {
				case e == nil:
				case !e.IsActive():
					t.ClearedEntries++
				case e.EntryType == model.EntryWarning:
					t.ActiveWarnings++
				case e.EntryType == model.EntryNote:
					t.ActiveNotes++
				}
			}
		}
	}
	t.ActiveMutes = len(data.ActiveMutes)
	return t
}
