package review

import "strings"

// ActionKind enumerates the decoded callback actions.
type ActionKind int

const (
	// ActionNone is returned for unrecognized callback data. Such presses are
	// ignored so keyboards rendered by older builds stay harmless.
	ActionNone ActionKind = iota
	ActionRejectMenu
	ActionRejectBack
	ActionSpoiler
	ActionInPlan
	ActionAccept
	ActionAcceptSecond
	ActionAnonymous
	ActionCancel
	ActionTag
	ActionRejectReason
	ActionChannelOption
)

// Action is one decoded button press. Arg carries the tag name or reason
// token for the prefix-parameterized actions, Args the channel option
// arguments.
type Action struct {
	Kind ActionKind
	Arg  string
	Args []string
}

// exactActions is the single decode table for parameterless callback data.
// Multiple keys mapping to the same kind are protocol aliases kept for
// keyboards rendered by older builds.
var exactActions = map[string]ActionKind{
	"review reject":        ActionRejectMenu,
	"review reject back":   ActionRejectBack,
	"reject back":          ActionRejectBack,
	"review spoiler":       ActionSpoiler,
	"review inplan":        ActionInPlan,
	"review accept":        ActionAccept,
	"review accept second": ActionAcceptSecond,
	"review anymouse":      ActionAnonymous,
	"review cancel":        ActionCancel,
}

// ParseAction decodes callback data by exact match first, then by recognized
// prefix. This is the only place raw callback strings are inspected.
func ParseAction(data string) Action {
	if kind, ok := exactActions[data]; ok {
		return Action{Kind: kind}
	}

	if name, ok := strings.CutPrefix(data, "review tag "); ok {
		// "spoiler" is a reserved tag name aliasing the spoiler toggle.
		if name == "spoiler" {
			return Action{Kind: ActionSpoiler}
		}
		return Action{Kind: ActionTag, Arg: name}
	}

	if payload, ok := strings.CutPrefix(data, "reject "); ok {
		return Action{Kind: ActionRejectReason, Arg: payload}
	}

	if rest, ok := strings.CutPrefix(data, "channeloption "); ok {
		return Action{Kind: ActionChannelOption, Args: strings.Fields(rest)}
	}

	return Action{Kind: ActionNone}
}
