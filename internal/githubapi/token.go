package githubapi

import (
	"os"
	"strings"
)

// Environment variable names consulted for a GitHub token, in order of preference.
const (
	EnvCourseSyncToken = "COURSESYNC_GITHUB_TOKEN"
	EnvGitHubCLIToken  = "GH_TOKEN"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvGitHubAPIToken  = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvCourseSyncToken,
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the configured token, falling back to the first non-empty
// token variable in the environment. A nil lookup reads the process environment.
func ResolveToken(configured string, lookup EnvironmentLookup) (string, bool) {
	if trimmed := strings.TrimSpace(configured); len(trimmed) > 0 {
		return trimmed, true
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 {
			return value, true
		}
	}
	return "", false
}
