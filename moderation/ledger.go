package moderation

import (
	"sort"
	"strings"

	"discord-warn-bot/model"
)

// Ledger wraps the persisted document with the lookups the workflows need.
// It does no locking of its own; Service serializes access.
type Ledger struct {
	data *model.WarningData
}

func NewLedger(data *model.WarningData) *Ledger {
	if data == nil {
		data = model.NewWarningData()
	}
	data.EnsureKeys()
	// Cached counters in a loaded document may be stale or missing.
	for _, users := range data.Warnings {
		for _, rec := range users {
			if rec != nil {
				refreshCounters(rec)
			}
		}
	}
	return &Ledger{data: data}
}

func (l *Ledger) Data() *model.WarningData {
	return l.data
}

// User returns the record for a guild member, or nil.
func (l *Ledger) User(guildID, userID string) *model.UserRecord {
	users, ok := l.data.Warnings[guildID]
	if !ok {
		return nil
	}
	return users[userID]
}

// ensureUser returns the member's record, creating the guild map and record
// as needed. The flags say what was created so a rollback can undo it.
func (l *Ledger) ensureUser(guildID, userID string) (rec *model.UserRecord, newGuild, newUser bool) {
	users, ok := l.data.Warnings[guildID]
	if !ok {
		users = make(map[string]*model.UserRecord)
		l.data.Warnings[guildID] = users
		newGuild = true
	}
	rec, ok = users[userID]
	if !ok || rec == nil {
		rec = &model.UserRecord{Entries: []*model.Entry{}, PerRuleViolations: make(map[string]int)}
		users[userID] = rec
		newUser = true
	}
	if rec.PerRuleViolations == nil {
		rec.PerRuleViolations = make(map[string]int)
	}
	return rec, newGuild, newUser
}

// caseIDInUse reports whether any entry in the guild already uses id.
func (l *Ledger) caseIDInUse(guildID, id string) bool {
	for _, rec := range l.data.Warnings[guildID] {
		if rec == nil {
			continue
		}
		for _, e := range rec.Entries {
			if e != nil && strings.EqualFold(e.CaseID, id) {
				return true
			}
		}
	}
	return false
}

// findActive locates the active entry with caseID. Users are scanned in
// ascending ID order so the result is stable across runs.
func (l *Ledger) findActive(guildID, caseID string) (string, *model.Entry) {
	users := l.data.Warnings[guildID]
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, userID := range ids {
		rec := users[userID]
		if rec == nil {
			continue
		}
		for _, e := range rec.Entries {
			if e != nil && e.IsActive() && strings.ToUpper(e.CaseID) == caseID {
				return userID, e
			}
		}
	}
	return "", nil
}

// Mute returns the active mute of a guild member, or nil.
func (l *Ledger) Mute(guildID, userID string) *model.MuteRecord {
	return l.data.ActiveMutes[model.MuteKey(guildID, userID)]
}

func (l *Ledger) setMute(m *model.MuteRecord) {
	l.data.ActiveMutes[model.MuteKey(m.GuildID.String(), m.UserID.String())] = m
}

func (l *Ledger) deleteMute(guildID, userID string) {
	delete(l.data.ActiveMutes, model.MuteKey(guildID, userID))
}

// muteKeys lists active mute keys in sorted order.
func (l *Ledger) muteKeys() []string {
	keys := make([]string, 0, len(l.data.ActiveMutes))
	for k := range l.data.ActiveMutes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
