package githubauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bennypowers/lighthouse-ci-action/internal/githubauth"
)

func TestResolveNotificationToken(testInstance *testing.T) {
	testCases := []struct {
		name          string
		environment   map[string]string
		expectedToken string
		expectedFound bool
	}{
		{
			name:          "cli_token_preferred",
			environment:   map[string]string{githubauth.EnvGitHubCLIToken: "cli-token", githubauth.EnvGitHubToken: "repo-token"},
			expectedToken: "cli-token",
			expectedFound: true,
		},
		{
			name:          "repo_token_fallback",
			environment:   map[string]string{githubauth.EnvGitHubToken: "repo-token"},
			expectedToken: "repo-token",
			expectedFound: true,
		},
		{
			name:          "blank_values_ignored",
			environment:   map[string]string{githubauth.EnvGitHubCLIToken: "   "},
			expectedFound: false,
		},
		{
			name:          "archive_token_not_consulted",
			environment:   map[string]string{githubauth.EnvGistUploadToken: "gist-token"},
			expectedFound: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			clearTokenEnvironment(testInstance)
			resolvedToken, found := githubauth.ResolveNotificationToken(testCase.environment)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedToken, resolvedToken)
		})
	}
}

func clearTokenEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	for _, key := range []string{
		githubauth.EnvGitHubCLIToken,
		githubauth.EnvGitHubToken,
		githubauth.EnvGistUploadToken,
		githubauth.EnvLegacyGistToken,
	} {
		testInstance.Setenv(key, "")
	}
}

func TestResolveArchiveToken(testInstance *testing.T) {
	clearTokenEnvironment(testInstance)
	resolvedToken, found := githubauth.ResolveArchiveToken(map[string]string{
		githubauth.EnvLegacyGistToken: "legacy-token",
	})
	require.True(testInstance, found)
	require.Equal(testInstance, "legacy-token", resolvedToken)

	_, foundWithoutCredential := githubauth.ResolveArchiveToken(map[string]string{
		githubauth.EnvGitHubToken: "repo-token",
	})
	require.False(testInstance, foundWithoutCredential)
}
