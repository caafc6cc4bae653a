package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/coursesync/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		provider      pathutils.HomeDirectoryProvider
		candidatePath string
		expectedPath  string
	}{
		{
			name:          "tilde_only",
			provider:      func() (string, error) { return "/home/student", nil },
			candidatePath: "~",
			expectedPath:  "/home/student",
		},
		{
			name:          "tilde_prefix",
			provider:      func() (string, error) { return "/home/student", nil },
			candidatePath: "~/courses/rust",
			expectedPath:  filepath.Join("/home/student", "courses/rust"),
		},
		{
			name:          "absolute_path_untouched",
			provider:      func() (string, error) { return "/home/student", nil },
			candidatePath: "/srv/course",
			expectedPath:  "/srv/course",
		},
		{
			name:          "provider_failure_keeps_input",
			provider:      func() (string, error) { return "", errors.New("no home") },
			candidatePath: "~/course",
			expectedPath:  "~/course",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(testCase.provider)
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderResolveAbsolute(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "/home/student", nil })

	resolvedPath, resolveError := expander.ResolveAbsolute("~/course/../course")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "/home/student/course", resolvedPath)

	workingDirectory, workingDirectoryError := filepath.Abs(".")
	require.NoError(testInstance, workingDirectoryError)
	resolvedPath, resolveError = expander.ResolveAbsolute("  ")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, workingDirectory, resolvedPath)
}
