package dispatch

import "strings"

const (
	defaultResultsDirectoryConstant = ".lighthouseci"

	resultsDirectoryConfigurationKeyConstant = "results_directory"
	repositoryConfigurationKeyConstant       = "repository"
	commitShaConfigurationKeyConstant        = "commit_sha"
	slackEnabledConfigurationKeyConstant     = "slack.enabled"
	slackWebhookConfigurationKeyConstant     = "slack.webhook_url"
	checkRunEnabledConfigurationKeyConstant  = "check_run.enabled"
	configurationKeySeparatorConstant        = "."
)

// SlackConfiguration controls the chat notification channel.
type SlackConfiguration struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
}

// CheckRunConfiguration controls the check-run notification channel.
type CheckRunConfiguration struct {
	Enabled bool `mapstructure:"enabled"`
}

// CommandConfiguration aggregates settings for the report command.
type CommandConfiguration struct {
	ResultsDirectory string                `mapstructure:"results_directory"`
	Repository       string                `mapstructure:"repository"`
	CommitSHA        string                `mapstructure:"commit_sha"`
	Slack            SlackConfiguration    `mapstructure:"slack"`
	CheckRun         CheckRunConfiguration `mapstructure:"check_run"`
}

// DefaultCommandConfiguration supplies baseline values for the report command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ResultsDirectory: defaultResultsDirectoryConstant,
	}
}

// DefaultConfigurationValues exposes report defaults keyed for viper registration.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + resultsDirectoryConfigurationKeyConstant: defaults.ResultsDirectory,
		prefix + configurationKeySeparatorConstant + repositoryConfigurationKeyConstant:       defaults.Repository,
		prefix + configurationKeySeparatorConstant + commitShaConfigurationKeyConstant:        defaults.CommitSHA,
		prefix + configurationKeySeparatorConstant + slackEnabledConfigurationKeyConstant:     defaults.Slack.Enabled,
		prefix + configurationKeySeparatorConstant + slackWebhookConfigurationKeyConstant:     defaults.Slack.WebhookURL,
		prefix + configurationKeySeparatorConstant + checkRunEnabledConfigurationKeyConstant:  defaults.CheckRun.Enabled,
	}
}

// Sanitize trims configured values and restores required defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ResultsDirectory = strings.TrimSpace(configuration.ResultsDirectory)
	if len(sanitized.ResultsDirectory) == 0 {
		sanitized.ResultsDirectory = defaultResultsDirectoryConstant
	}
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.CommitSHA = strings.TrimSpace(configuration.CommitSHA)
	sanitized.Slack.WebhookURL = strings.TrimSpace(configuration.Slack.WebhookURL)
	return sanitized
}
