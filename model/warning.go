package model

import "fmt"

type EntryType string

const (
	EntryWarning EntryType = "warning"
	EntryNote    EntryType = "note"

	// Written into entries by older versions; now kept in MemberActivity.
	EntryJoinEvent  EntryType = "join_event"
	EntryLeaveEvent EntryType = "leave_event"
)

type EntryStatus string

const (
	StatusActive  EntryStatus = "active"
	StatusCleared EntryStatus = "cleared"
)

// Entry is one administrative action recorded against a user. Entries are
// never deleted; clearing flips Status and stamps the Cleared* fields.
type Entry struct {
	EntryType     EntryType   `json:"entry_type"`
	Status        EntryStatus `json:"status,omitempty"`
	CaseID        string      `json:"case_id"`
	Timestamp     int64       `json:"timestamp"`
	OperatorID    Snowflake   `json:"operator_id"`
	OperatorName  string      `json:"operator_name"`
	ReasonDisplay string      `json:"reason_displayed,omitempty"`
	RuleIDMatched *string     `json:"rule_id_matched,omitempty"`
	OriginalInput string      `json:"original_input,omitempty"`
	Text          string      `json:"text,omitempty"`

	// Reason is only present on warnings written by very old versions.
	Reason string `json:"reason,omitempty"`

	HistoryMessageID      Snowflake `json:"message_id_history_channel,omitempty"`
	NotificationMessageID Snowflake `json:"message_id_notification_channel,omitempty"`

	ClearedTimestamp      int64     `json:"cleared_timestamp,omitempty"`
	ClearedByOperatorID   Snowflake `json:"cleared_by_operator_id,omitempty"`
	ClearedByOperatorName string    `json:"cleared_by_operator_name,omitempty"`
}

// IsActive treats a missing status as active.
func (e *Entry) IsActive() bool {
	return e.Status != StatusCleared
}

// IsActiveWarning reports whether the entry counts toward the ladder.
func (e *Entry) IsActiveWarning() bool {
	return e.EntryType == EntryWarning && e.IsActive()
}

// RuleID returns the matched rule or "".
func (e *Entry) RuleID() string {
	if e.RuleIDMatched == nil {
		return ""
	}
	return *e.RuleIDMatched
}

// DisplayReason falls back to the legacy reason field.
func (e *Entry) DisplayReason() string {
	if e.ReasonDisplay != "" {
		return e.ReasonDisplay
	}
	if e.Reason != "" {
		return e.Reason
	}
	return "N/A"
}

// UserRecord is the ledger for one (guild, user) pair. TotalWarnings and
// PerRuleViolations are caches derived from Entries.
type UserRecord struct {
	Entries           []*Entry       `json:"entries"`
	TotalWarnings     int            `json:"total_warnings"`
	PerRuleViolations map[string]int `json:"per_rule_violations"`
}

// MuteRecord is one active timed mute.
type MuteRecord struct {
	UserID          Snowflake `json:"user_id"`
	GuildID         Snowflake `json:"guild_id"`
	MutedAt         FlexTime  `json:"muted_at"`
	UnmuteAt        FlexTime  `json:"unmute_at"`
	DurationMinutes int       `json:"duration_minutes"`
	MutedBy         Snowflake `json:"muted_by"`
	CaseIDsForMute  []string  `json:"case_ids_for_mute"`

	// VerifiedRoleRemoved is nil on records written before it was tracked.
	VerifiedRoleRemoved *bool `json:"verified_role_removed,omitempty"`
}

// ShouldRestoreVerifiedRole reports whether unmuting must give the baseline
// role back.
func (m *MuteRecord) ShouldRestoreVerifiedRole() bool {
	return m.VerifiedRoleRemoved == nil || *m.VerifiedRoleRemoved
}

// MuteKey builds the active_mutes key for a guild member.
func MuteKey(guildID, userID string) string {
	return fmt.Sprintf("%s-%s", guildID, userID)
}

type ActivityKind string

const (
	ActivityJoin  ActivityKind = "join"
	ActivityLeave ActivityKind = "leave"
)

// MemberActivity is one join/leave event.
type MemberActivity struct {
	Type      ActivityKind `json:"type"`
	Timestamp int64        `json:"timestamp"`
	UserID    Snowflake    `json:"user_id"`
	GuildID   Snowflake    `json:"guild_id"`
}

// WarningData is the whole persisted document.
type WarningData struct {
	Warnings       map[string]map[string]*UserRecord      `json:"warnings"`
	ActiveMutes    map[string]*MuteRecord                 `json:"active_mutes"`
	MemberActivity map[string]map[string][]MemberActivity `json:"member_activity"`
}

// NewWarningData returns an empty document.
func NewWarningData() *WarningData {
	d := &WarningData{}
	d.EnsureKeys()
	return d
}

// EnsureKeys fills in top-level maps missing from an older document.
func (d *WarningData) EnsureKeys() {
	if d.Warnings == nil {
		d.Warnings = make(map[string]map[string]*UserRecord)
	}
	if d.ActiveMutes == nil {
		d.ActiveMutes = make(map[string]*MuteRecord)
	}
	if d.MemberActivity == nil {
		d.MemberActivity = make(map[string]map[string][]MemberActivity)
	}
	for _, users := range d.Warnings {
		for _, rec := range users {
			if rec == nil {
				continue
			}
			if rec.PerRuleViolations == nil {
				rec.PerRuleViolations = make(map[string]int)
			}
			if rec.Entries == nil {
				rec.Entries = []*Entry{}
			}
		}
	}
}
