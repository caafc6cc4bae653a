package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v55/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/temirov/coursesync/internal/gitrepo"
)

const (
	defaultUserAgentConstant          = "coursesync"
	publicGitHubHostConstant          = "github.com"
	urlPathSeparatorConstant          = "/"
	tokenRequiredMessageConstant      = "github token is required"
	unsupportedHostTemplateConstant   = "%w: %s"
	unsupportedHostMessageConstant    = "remote is not hosted on the configured GitHub instance"
	invalidBaseURLTemplateConstant    = "invalid github base url %q: %w"
	baseURLMissingPartsMessage        = "url must include scheme and host"
	enterpriseClientErrorTemplate     = "failed to construct enterprise github client: %w"
	branchLookupErrorTemplateConstant = "failed to read protection of %s in %s: %w"
	branchCheckedLogMessageConstant   = "branch protection checked"
	branchMissingLogMessageConstant   = "branch not present on github"
	repositoryLogFieldConstant        = "repository"
	branchLogFieldConstant            = "branch"
	protectedLogFieldConstant         = "protected"
)

// ErrTokenRequired indicates that no token was supplied.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// ErrUnsupportedHost indicates that the remote points at a host the client does not talk to.
var ErrUnsupportedHost = errors.New(unsupportedHostMessageConstant)

// ClientOptions configures the GitHub REST client.
type ClientOptions struct {
	Token string
	// BaseURL targets a GitHub Enterprise instance. Empty means github.com.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// ProtectionChecker reports which branches are protected on GitHub.
type ProtectionChecker struct {
	client *github.Client
	host   string
	logger *zap.Logger
}

// NewProtectionChecker builds a checker backed by the go-github REST client.
func NewProtectionChecker(executionContext context.Context, options ClientOptions) (*ProtectionChecker, error) {
	token := strings.TrimSpace(options.Token)
	if len(token) == 0 {
		return nil, ErrTokenRequired
	}

	if options.HTTPClient != nil {
		executionContext = context.WithValue(executionContext, oauth2.HTTPClient, options.HTTPClient)
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(executionContext, tokenSource))
	host := publicGitHubHostConstant

	baseURL := strings.TrimSpace(options.BaseURL)
	if len(baseURL) > 0 {
		normalizedURL, parsedHost, normalizeError := normalizeBaseURL(baseURL)
		if normalizeError != nil {
			return nil, normalizeError
		}
		enterpriseClient, enterpriseError := client.WithEnterpriseURLs(normalizedURL, normalizedURL)
		if enterpriseError != nil {
			return nil, fmt.Errorf(enterpriseClientErrorTemplate, enterpriseError)
		}
		client = enterpriseClient
		host = parsedHost
	}
	client.UserAgent = defaultUserAgentConstant

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProtectionChecker{client: client, host: host, logger: logger}, nil
}

// ProtectedBranches returns the subset of branches that GitHub reports as protected.
// Branches missing on GitHub are not protected.
func (checker *ProtectionChecker) ProtectedBranches(executionContext context.Context, repository gitrepo.RemoteURL, branches []string) ([]string, error) {
	if !strings.EqualFold(repository.Host, checker.host) {
		return nil, fmt.Errorf(unsupportedHostTemplateConstant, ErrUnsupportedHost, repository.Host)
	}

	protected := make([]string, 0)
	for _, branch := range branches {
		githubBranch, response, lookupError := checker.client.Repositories.GetBranch(executionContext, repository.Owner, repository.Repository, branch, false)
		if lookupError != nil {
			if response != nil && response.StatusCode == http.StatusNotFound {
				checker.logger.Debug(branchMissingLogMessageConstant, zap.String(repositoryLogFieldConstant, repository.Slug()), zap.String(branchLogFieldConstant, branch))
				continue
			}
			return nil, fmt.Errorf(branchLookupErrorTemplateConstant, branch, repository.Slug(), lookupError)
		}
		isProtected := githubBranch.GetProtected()
		checker.logger.Debug(branchCheckedLogMessageConstant, zap.String(repositoryLogFieldConstant, repository.Slug()), zap.String(branchLogFieldConstant, branch), zap.Bool(protectedLogFieldConstant, isProtected))
		if isProtected {
			protected = append(protected, branch)
		}
	}
	return protected, nil
}

func normalizeBaseURL(raw string) (string, string, error) {
	parsed, parseError := url.Parse(raw)
	if parseError != nil {
		return "", "", fmt.Errorf(invalidBaseURLTemplateConstant, raw, parseError)
	}
	if len(parsed.Scheme) == 0 || len(parsed.Host) == 0 {
		return "", "", fmt.Errorf(invalidBaseURLTemplateConstant, raw, errors.New(baseURLMissingPartsMessage))
	}
	if !strings.HasSuffix(parsed.Path, urlPathSeparatorConstant) {
		parsed.Path += urlPathSeparatorConstant
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), parsed.Hostname(), nil
}
