package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseApprovalInput(t *testing.T) {
	tests := []struct {
		input    string
		expected ApprovalChoice
	}{
		{"y", ChoiceApprove},
		{"yes", ChoiceApprove},
		{"  YES  ", ChoiceApprove},
		{"n", ChoiceDeny},
		{"no", ChoiceDeny},
		{"a", ChoiceAlways},
		{"always", ChoiceAlways},
		{"", ChoiceUnknown},
		{"maybe", ChoiceUnknown},
		{"1,2", ChoiceUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseApprovalInput(tt.input), "input %q", tt.input)
	}
}
