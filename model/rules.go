package model

type RuleActionType string

const (
	RuleGeneralViolation RuleActionType = "general_violation"
	RuleSpecificAction   RuleActionType = "specific_action"
)

// ActionDirective is one rule-specific action as written in the rules file.
type ActionDirective struct {
	Type           string `json:"type"`
	ReasonTemplate string `json:"reason_template,omitempty"`
	Details        string `json:"details,omitempty"`
}

// RuleDefinition is one entry of the rule catalog.
type RuleDefinition struct {
	ID         Snowflake         `json:"id"`
	Text       string            `json:"text"`
	ActionType RuleActionType    `json:"action_type"`
	Actions    []ActionDirective `json:"actions,omitempty"`
}

type LadderAction string

const (
	LadderMute            LadderAction = "mute"
	LadderRemoveTemporary LadderAction = "remove_temporary"
	LadderBanPermanent    LadderAction = "ban_permanent"
)

// PunishmentTier is one step of the general punishment ladder.
type PunishmentTier struct {
	Threshold           int          `json:"threshold"`
	Action              LadderAction `json:"action"`
	DurationMinutes     int          `json:"duration_minutes,omitempty"`
	DurationHours       int          `json:"duration_hours,omitempty"`
	DescriptionTemplate string       `json:"description_template,omitempty"`
	CanRejoin           *bool        `json:"can_rejoin,omitempty"`
}

// TotalMinutes is the mute length of the tier.
func (t PunishmentTier) TotalMinutes() int {
	return t.DurationMinutes + t.DurationHours*60
}
