package moderation

import (
	"strconv"
	"strings"

	"discord-warn-bot/model"
)

// DirectiveKind is the closed set of rule-specific actions.
type DirectiveKind int

const (
	DirectiveUnknown DirectiveKind = iota
	// DirectiveBan permanently removes the member from the guild.
	DirectiveBan
	// DirectiveRevokeAdvisory tells moderators to revoke a role by hand.
	DirectiveRevokeAdvisory
	// DirectiveMonitor is informational and takes no action.
	DirectiveMonitor
)

var directiveNames = map[string]DirectiveKind{
	"permanent_remove_from_group": DirectiveBan,
	"revoke_role":                 DirectiveRevokeAdvisory,
	"revoke_role_advisory":        DirectiveRevokeAdvisory,
	"monitor":                     DirectiveMonitor,
	"monitor_only":                DirectiveMonitor,
}

// ParseDirectiveKind maps the rules-file type string to a kind.
func ParseDirectiveKind(s string) DirectiveKind {
	if kind, ok := directiveNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return kind
	}
	return DirectiveUnknown
}

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveBan:
		return "permanent_remove_from_group"
	case DirectiveRevokeAdvisory:
		return "revoke_role"
	case DirectiveMonitor:
		return "monitor"
	default:
		return "unknown"
	}
}

// Directive is a parsed rule-specific action.
type Directive struct {
	Kind    DirectiveKind
	RawType string
	Reason  string
	Details string
}

// ParseDirectives converts the rules-file directives in order.
func ParseDirectives(raw []model.ActionDirective) []Directive {
	out := make([]Directive, 0, len(raw))
	for _, d := range raw {
		out = append(out, Directive{
			Kind:    ParseDirectiveKind(d.Type),
			RawType: d.Type,
			Reason:  d.ReasonTemplate,
			Details: d.Details,
		})
	}
	return out
}

// renderTemplate fills the {count} and {rule_id} placeholders.
func renderTemplate(tmpl, fallback string, count int, ruleID string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = fallback
	}
	r := strings.NewReplacer("{count}", strconv.Itoa(count), "{rule_id}", ruleID)
	return r.Replace(tmpl)
}
