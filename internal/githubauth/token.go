package githubauth

import (
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken  = "GH_TOKEN"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvGistUploadToken = "LIGHTHOUSE_GIST_TOKEN"
	EnvLegacyGistToken = "GIST_UPLOAD_TOKEN"
)

// Notification posting and gist archiving use separate credentials with
// independent scopes; neither falls back to the other.
var (
	notificationTokenPreference = []string{
		EnvGitHubCLIToken,
		EnvGitHubToken,
	}
	archiveTokenPreference = []string{
		EnvGistUploadToken,
		EnvLegacyGistToken,
	}
)

// ResolveNotificationToken returns the credential used to post check runs,
// preferring the provided environment map over the process environment.
func ResolveNotificationToken(environment map[string]string) (string, bool) {
	return resolveFromPreference(environment, notificationTokenPreference)
}

// ResolveArchiveToken returns the credential used for gist archiving and
// pull-request lookup, preferring the provided environment map over the
// process environment.
func ResolveArchiveToken(environment map[string]string) (string, bool) {
	return resolveFromPreference(environment, archiveTokenPreference)
}

func resolveFromPreference(environment map[string]string, preference []string) (string, bool) {
	for _, key := range preference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	for _, key := range preference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, true
			}
		}
	}
	return "", false
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
