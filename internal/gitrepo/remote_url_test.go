package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name         string
		remote       string
		expected     gitrepo.RemoteURL
		expectedSlug string
		expectError  bool
	}{
		{
			name:         "scp_style_ssh",
			remote:       "git@github.com:course-org/rust-course.git",
			expected:     gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "course-org", Repository: "rust-course"},
			expectedSlug: "course-org/rust-course",
		},
		{
			name:         "ssh_scheme",
			remote:       "ssh://git@github.com/course-org/rust-course.git",
			expected:     gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "course-org", Repository: "rust-course"},
			expectedSlug: "course-org/rust-course",
		},
		{
			name:         "https",
			remote:       "https://github.com/course-org/rust-course",
			expected:     gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "course-org", Repository: "rust-course"},
			expectedSlug: "course-org/rust-course",
		},
		{name: "local_path", remote: "/srv/git/course.git", expectError: true},
		{name: "empty", remote: "  ", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsed, parseError := gitrepo.ParseRemoteURL(testCase.remote)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, parsed)
			require.Equal(testInstance, testCase.expectedSlug, parsed.Slug())
		})
	}
}
