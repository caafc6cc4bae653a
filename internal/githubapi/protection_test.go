package githubapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coursesync/internal/githubapi"
	"github.com/temirov/coursesync/internal/gitrepo"
)

const branchesPathPrefix = "/api/v3/repos/course/lessons/branches/"

func newBranchServer(testInstance *testing.T, protectedBranches map[string]bool, authorization *string) *httptest.Server {
	testInstance.Helper()
	handler := http.NewServeMux()
	handler.HandleFunc(branchesPathPrefix, func(responseWriter http.ResponseWriter, request *http.Request) {
		if authorization != nil {
			*authorization = request.Header.Get("Authorization")
		}
		branch := strings.TrimPrefix(request.URL.Path, branchesPathPrefix)
		if branch == "broken" {
			responseWriter.WriteHeader(http.StatusInternalServerError)
			return
		}
		protected, exists := protectedBranches[branch]
		if !exists {
			responseWriter.WriteHeader(http.StatusNotFound)
			return
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(map[string]any{"name": branch, "protected": protected}))
	})
	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)
	return server
}

func TestProtectedBranchesReportsOnlyProtectedOnes(testInstance *testing.T) {
	var authorization string
	server := newBranchServer(testInstance, map[string]bool{"01-intro": true, "01-intro-solution": false}, &authorization)

	checker, creationError := githubapi.NewProtectionChecker(context.Background(), githubapi.ClientOptions{Token: "secret", BaseURL: server.URL})
	require.NoError(testInstance, creationError)

	repository := gitrepo.RemoteURL{Host: "127.0.0.1", Owner: "course", Repository: "lessons"}
	protected, checkError := checker.ProtectedBranches(context.Background(), repository, []string{"01-intro", "01-intro-solution", "02-loops"})
	require.NoError(testInstance, checkError)
	require.Equal(testInstance, []string{"01-intro"}, protected)
	require.Equal(testInstance, "Bearer secret", authorization)
}

func TestProtectedBranchesSurfacesAPIErrors(testInstance *testing.T) {
	server := newBranchServer(testInstance, nil, nil)
	checker, creationError := githubapi.NewProtectionChecker(context.Background(), githubapi.ClientOptions{Token: "secret", BaseURL: server.URL})
	require.NoError(testInstance, creationError)

	repository := gitrepo.RemoteURL{Host: "127.0.0.1", Owner: "course", Repository: "lessons"}
	_, checkError := checker.ProtectedBranches(context.Background(), repository, []string{"broken"})
	require.ErrorContains(testInstance, checkError, "failed to read protection of broken in course/lessons")
}

func TestProtectedBranchesRejectsOtherHosts(testInstance *testing.T) {
	checker, creationError := githubapi.NewProtectionChecker(context.Background(), githubapi.ClientOptions{Token: "secret"})
	require.NoError(testInstance, creationError)

	repository := gitrepo.RemoteURL{Host: "gitlab.com", Owner: "course", Repository: "lessons"}
	_, checkError := checker.ProtectedBranches(context.Background(), repository, []string{"01-intro"})
	require.ErrorIs(testInstance, checkError, githubapi.ErrUnsupportedHost)
}

func TestNewProtectionCheckerValidatesOptions(testInstance *testing.T) {
	_, missingTokenError := githubapi.NewProtectionChecker(context.Background(), githubapi.ClientOptions{Token: "  "})
	require.ErrorIs(testInstance, missingTokenError, githubapi.ErrTokenRequired)

	_, invalidURLError := githubapi.NewProtectionChecker(context.Background(), githubapi.ClientOptions{Token: "secret", BaseURL: "github.example.com"})
	require.ErrorContains(testInstance, invalidURLError, "invalid github base url")
}

func TestResolveTokenPreference(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configured    string
		environment   map[string]string
		expectedToken string
		expectedFound bool
	}{
		{name: "configured_wins", configured: " configured ", environment: map[string]string{"GH_TOKEN": "gh"}, expectedToken: "configured", expectedFound: true},
		{name: "application_variable_first", environment: map[string]string{"COURSESYNC_GITHUB_TOKEN": "app", "GH_TOKEN": "gh"}, expectedToken: "app", expectedFound: true},
		{name: "skips_blank_values", environment: map[string]string{"GH_TOKEN": "  ", "GITHUB_TOKEN": "github"}, expectedToken: "github", expectedFound: true},
		{name: "api_token_last", environment: map[string]string{"GITHUB_API_TOKEN": "api"}, expectedToken: "api", expectedFound: true},
		{name: "none", environment: map[string]string{}, expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			lookup := func(key string) (string, bool) {
				value, exists := testCase.environment[key]
				return value, exists
			}
			token, found := githubapi.ResolveToken(testCase.configured, lookup)
			require.Equal(subTest, testCase.expectedFound, found)
			require.Equal(subTest, testCase.expectedToken, token)
		})
	}
}
