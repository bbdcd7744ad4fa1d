package moderation

import "discord-warn-bot/model"

// RecomputeCounters derives the active warning total and the per-rule counts
// from a user's entries. Rules with no active warnings are absent.
func RecomputeCounters(entries []*model.Entry) (int, map[string]int) {
	total := 0
	perRule := make(map[string]int)
	for _, e := range entries {
		if e == nil || !e.IsActiveWarning() {
			continue
		}
		total++
		if id := e.RuleID(); id != "" {
			perRule[id]++
		}
	}
	return total, perRule
}

func refreshCounters(rec *model.UserRecord) {
	rec.TotalWarnings, rec.PerRuleViolations = RecomputeCounters(rec.Entries)
}
