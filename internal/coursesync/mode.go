package coursesync

import "strings"

// Mode selects what a run does with the discovered branches.
type Mode string

// Supported modes.
const (
	ModeRebase Mode = "rebase"
	ModeForce  Mode = "force"
)

const (
	forceModePrefixConstant    = "-f"
	forceModeWordConstant      = "force"
	forceModeLongFlagConstant  = "--force"
	argumentTerminatorConstant = "--"
)

// ResolveMode inspects the first positional argument. A case-insensitive "-f" prefix selects force mode,
// as do "force" and "--force"; anything else selects rebase mode.
func ResolveMode(arguments []string) Mode {
	if len(arguments) == 0 {
		return ModeRebase
	}
	candidate := strings.ToLower(strings.TrimSpace(arguments[0]))
	switch {
	case strings.HasPrefix(candidate, forceModePrefixConstant):
		return ModeForce
	case candidate == forceModeWordConstant, candidate == forceModeLongFlagConstant:
		return ModeForce
	default:
		return ModeRebase
	}
}

// NormalizeModeArguments rewrites a leading force-mode token such as "-F" or "-force" into "force"
// so that flag parsing does not reject it. "--force" is rewritten wherever it appears before the
// argument terminator.
func NormalizeModeArguments(arguments []string) []string {
	normalized := append([]string{}, arguments...)
	if len(normalized) == 0 {
		return normalized
	}
	candidate := strings.ToLower(strings.TrimSpace(normalized[0]))
	if strings.HasPrefix(candidate, forceModePrefixConstant) {
		normalized[0] = forceModeWordConstant
		return normalized
	}
	for index, argument := range normalized {
		if argument == argumentTerminatorConstant {
			break
		}
		if strings.ToLower(strings.TrimSpace(argument)) == forceModeLongFlagConstant {
			normalized[index] = forceModeWordConstant
			break
		}
	}
	return normalized
}
