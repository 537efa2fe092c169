package cli

import "strings"

// ApprovalChoice is the parsed answer to an approval prompt.
type ApprovalChoice int

const (
	// ChoiceUnknown means the input was not recognized; ask again.
	ChoiceUnknown ApprovalChoice = iota
	ChoiceApprove
	ChoiceDeny
	// ChoiceAlways approves this patch and auto-approves the rest of
	// the run.
	ChoiceAlways
)

// ParseApprovalInput parses the user's response to an approval prompt.
//
// Supports:
//   - "y"/"yes" approve this patch
//   - "n"/"no" deny this patch
//   - "a"/"always" approve and stop asking for this run
func ParseApprovalInput(line string) ApprovalChoice {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return ChoiceApprove
	case "n", "no":
		return ChoiceDeny
	case "a", "always":
		return ChoiceAlways
	default:
		return ChoiceUnknown
	}
}
