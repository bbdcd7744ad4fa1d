package moderation

import (
	"encoding/json"
	"os"
	"strings"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

// RuleCatalog maps rule IDs to their definitions and carries the general
// punishment ladder.
type RuleCatalog struct {
	rules  map[string]model.RuleDefinition
	order  []string
	ladder Ladder
}

// NewRuleCatalog builds a catalog from already decoded data.
func NewRuleCatalog(rules []model.RuleDefinition, ladder []model.PunishmentTier) *RuleCatalog {
	c := &RuleCatalog{rules: make(map[string]model.RuleDefinition, len(rules))}
	for _, r := range rules {
		id := strings.TrimSpace(r.ID.String())
		if id == "" {
			continue
		}
		if _, dup := c.rules[id]; !dup {
			c.order = append(c.order, id)
		}
		c.rules[id] = r
	}
	c.ladder = NewLadder(ladder)
	return c
}

// Lookup returns the rule with the given ID.
func (c *RuleCatalog) Lookup(id string) (model.RuleDefinition, bool) {
	if c == nil {
		return model.RuleDefinition{}, false
	}
	r, ok := c.rules[strings.TrimSpace(id)]
	return r, ok
}

// Rules lists rules in file order.
func (c *RuleCatalog) Rules() []model.RuleDefinition {
	out := make([]model.RuleDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.rules[id])
	}
	return out
}

func (c *RuleCatalog) Ladder() Ladder {
	if c == nil {
		return Ladder{}
	}
	return c.ladder
}

// LoadRuleCatalog reads the rules file. A missing or malformed file yields an
// empty catalog; the bot keeps running without rules.
func LoadRuleCatalog(path string) *RuleCatalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Could not read rules file, using empty rules")
		return NewRuleCatalog(nil, nil)
	}
	return ParseRuleCatalog(data)
}

// ParseRuleCatalog decodes a rules document, skipping anything malformed.
func ParseRuleCatalog(data []byte) *RuleCatalog {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		log.Error().Err(err).Msg("Rules data is not a valid JSON object, using empty rules")
		return NewRuleCatalog(nil, nil)
	}

	rules := decodeRules(top["rules"])
	ladder := decodeLadder(top["general_punishment_ladder"])
	return NewRuleCatalog(rules, ladder)
}

func decodeRules(raw json.RawMessage) []model.RuleDefinition {
	if len(raw) == 0 {
		log.Warn().Msg("Rules data is missing 'rules', using an empty list")
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Msg("'rules' is not a list, using an empty list")
		return nil
	}

	rules := make([]model.RuleDefinition, 0, len(items))
	for i, item := range items {
		var r model.RuleDefinition
		if err := json.Unmarshal(item, &r); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping malformed rule")
			continue
		}
		if r.ID == "" {
			log.Warn().Int("index", i).Msg("Skipping rule without id")
			continue
		}
		if r.ActionType == "" {
			r.ActionType = model.RuleGeneralViolation
		}
		rules = append(rules, r)
	}
	return rules
}

func decodeLadder(raw json.RawMessage) []model.PunishmentTier {
	if len(raw) == 0 {
		log.Warn().Msg("Rules data is missing 'general_punishment_ladder', using an empty ladder")
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Msg("'general_punishment_ladder' is not a list, using an empty ladder")
		return nil
	}

	tiers := make([]model.PunishmentTier, 0, len(items))
	for i, item := range items {
		var t model.PunishmentTier
		if err := json.Unmarshal(item, &t); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping malformed ladder tier")
			continue
		}
		if t.Threshold <= 0 {
			log.Warn().Int("index", i).Int("threshold", t.Threshold).Msg("Skipping ladder tier with non-positive threshold")
			continue
		}
		switch t.Action {
		case model.LadderMute, model.LadderRemoveTemporary, model.LadderBanPermanent:
		default:
			log.Warn().Int("index", i).Str("action", string(t.Action)).Msg("Ladder tier has unknown action, it will select but do nothing")
		}
		tiers = append(tiers, t)
	}
	return tiers
}
