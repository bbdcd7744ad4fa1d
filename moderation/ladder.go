package moderation

import (
	"sort"

	"discord-warn-bot/model"
)

// Ladder is the general punishment ladder, kept sorted by descending
// threshold.
type Ladder struct {
	tiers []model.PunishmentTier
}

// NewLadder copies and sorts tiers.
func NewLadder(tiers []model.PunishmentTier) Ladder {
	sorted := make([]model.PunishmentTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold > sorted[j].Threshold
	})
	return Ladder{tiers: sorted}
}

// Select returns the tier with the highest threshold not above count.
func (l Ladder) Select(count int) (model.PunishmentTier, bool) {
	for _, tier := range l.tiers {
		if count >= tier.Threshold {
			return tier, true
		}
	}
	return model.PunishmentTier{}, false
}

// ImpliesMute reports whether count lands on a mute tier.
func (l Ladder) ImpliesMute(count int) bool {
	tier, ok := l.Select(count)
	return ok && tier.Action == model.LadderMute
}

func (l Ladder) Len() int {
	return len(l.tiers)
}
