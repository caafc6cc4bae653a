package coursesync_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/coursesync"
)

func TestResolveMode(testInstance *testing.T) {
	testCases := []struct {
		name         string
		arguments    []string
		expectedMode coursesync.Mode
	}{
		{name: "upper_f", arguments: []string{"-F"}, expectedMode: coursesync.ModeForce},
		{name: "lower_f", arguments: []string{"-f"}, expectedMode: coursesync.ModeForce},
		{name: "single_dash_force", arguments: []string{"-force"}, expectedMode: coursesync.ModeForce},
		{name: "mixed_case_prefix", arguments: []string{"-FoRcE"}, expectedMode: coursesync.ModeForce},
		{name: "word_force", arguments: []string{"force"}, expectedMode: coursesync.ModeForce},
		{name: "long_flag_force", arguments: []string{"--force"}, expectedMode: coursesync.ModeForce},
		{name: "no_argument", arguments: nil, expectedMode: coursesync.ModeRebase},
		{name: "empty_argument", arguments: []string{""}, expectedMode: coursesync.ModeRebase},
		{name: "other_argument", arguments: []string{"rebase"}, expectedMode: coursesync.ModeRebase},
		{name: "f_without_dash", arguments: []string{"fix"}, expectedMode: coursesync.ModeRebase},
		{name: "only_first_argument_counts", arguments: []string{"now", "-f"}, expectedMode: coursesync.ModeRebase},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedMode, coursesync.ResolveMode(testCase.arguments))
		})
	}
}

func TestNormalizeModeArguments(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{name: "short_flag", arguments: []string{"-F", "--dry-run"}, expected: []string{"force", "--dry-run"}},
		{name: "single_dash_word", arguments: []string{"-force"}, expected: []string{"force"}},
		{name: "long_flag", arguments: []string{"--force"}, expected: []string{"force"}},
		{name: "other_flags_untouched", arguments: []string{"--dry-run", "-f"}, expected: []string{"--dry-run", "-f"}},
		{name: "long_flag_after_flags", arguments: []string{"--dry-run", "--force", "-C", "/work"}, expected: []string{"--dry-run", "force", "-C", "/work"}},
		{name: "long_flag_after_terminator_untouched", arguments: []string{"--dry-run", "--", "--force"}, expected: []string{"--dry-run", "--", "--force"}},
		{name: "subcommand_untouched", arguments: []string{"status"}, expected: []string{"status"}},
		{name: "empty", arguments: nil, expected: []string{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			original := append([]string{}, testCase.arguments...)
			require.Equal(subTest, testCase.expected, coursesync.NormalizeModeArguments(testCase.arguments))
			require.Equal(subTest, original, append([]string{}, testCase.arguments...))
		})
	}
}
