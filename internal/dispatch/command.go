package dispatch

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bennypowers/lighthouse-ci-action/internal/changeref"
	"github.com/bennypowers/lighthouse-ci-action/internal/execshell"
	"github.com/bennypowers/lighthouse-ci-action/internal/gist"
	"github.com/bennypowers/lighthouse-ci-action/internal/githubauth"
	"github.com/bennypowers/lighthouse-ci-action/internal/githubcli"
	"github.com/bennypowers/lighthouse-ci-action/internal/results"
	"github.com/bennypowers/lighthouse-ci-action/internal/slack"
	"github.com/bennypowers/lighthouse-ci-action/internal/ui"
	"github.com/bennypowers/lighthouse-ci-action/internal/utils"
)

const (
	reportCommandUseConstant              = "report"
	reportCommandShortDescriptionConstant = "Publish Lighthouse CI results to the configured channels"
	reportCommandLongDescriptionConstant  = "report reads Lighthouse CI output, archives raw reports as gists, and posts a summary to Slack and GitHub check runs."
	statusFlagNameConstant                = "status"
	statusFlagDescriptionConstant         = "Exit status of the Lighthouse CI run (non-zero indicates failed assertions)"
	unexpectedArgumentsMessageConstant    = "report does not accept positional arguments"
	commandExecutionErrorTemplate         = "report failed: %w"
	executorCreationErrorTemplate         = "failed to create shell executor: %w"
	clientCreationErrorTemplate           = "failed to create GitHub CLI client: %w"
	webhookClientCreationErrorTemplate    = "failed to create webhook client: %w"
	serviceCreationErrorTemplate          = "failed to create dispatch service: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current report configuration.
type ConfigurationProvider func() CommandConfiguration

// LogLevelProvider reports the configured logging level.
type LogLevelProvider func() utils.LogLevel

// HumanReadableLoggingProvider reports whether console formatting is enabled.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the report command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	LogLevelProvider             LogLevelProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
}

// Build constructs the report command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	reportCommand := &cobra.Command{
		Use:   reportCommandUseConstant,
		Short: reportCommandShortDescriptionConstant,
		Long:  reportCommandLongDescriptionConstant,
		RunE:  builder.runReport,
	}

	reportCommand.Flags().Int(statusFlagNameConstant, 0, statusFlagDescriptionConstant)

	return reportCommand, nil
}

func (builder *CommandBuilder) runReport(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsMessageConstant)
	}

	statusValue, statusFlagError := command.Flags().GetInt(statusFlagNameConstant)
	if statusFlagError != nil {
		return statusFlagError
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	service, serviceError := builder.assembleService(configuration, logger)
	if serviceError != nil {
		return serviceError
	}

	if executionError := service.Run(command.Context(), statusValue); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplate, executionError)
	}

	return nil
}

func (builder *CommandBuilder) assembleService(configuration CommandConfiguration, logger *zap.Logger) (*Service, error) {
	executor, executorError := builder.createShellExecutor(logger)
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplate, executorError)
	}

	dependencies := Dependencies{
		ResultStore: results.NewStore(configuration.ResultsDirectory),
	}

	archiveClient, archiveClientError := builder.createArchiveClient(executor)
	if archiveClientError != nil {
		return nil, archiveClientError
	}

	var pullRequestLister changeref.PullRequestLister
	if archiveClient != nil {
		dependencies.Archiver = gist.NewService(archiveClient, configuration.Repository, logger)
		pullRequestLister = archiveClient
	} else {
		dependencies.Archiver = gist.NewService(nil, configuration.Repository, logger)
	}
	dependencies.ChangeResolver = changeref.NewResolver(pullRequestLister, configuration.Repository, configuration.CommitSHA, logger)

	if configuration.Slack.Enabled && len(configuration.Slack.WebhookURL) > 0 {
		webhookClient, webhookError := slack.NewWebhookClient(executor, configuration.Slack.WebhookURL)
		if webhookError != nil {
			return nil, fmt.Errorf(webhookClientCreationErrorTemplate, webhookError)
		}
		dependencies.ChatMessenger = webhookClient
	}

	if configuration.CheckRun.Enabled {
		if notificationToken, tokenFound := githubauth.ResolveNotificationToken(nil); tokenFound {
			notificationClient, clientError := githubcli.NewClientWithToken(executor, notificationToken)
			if clientError != nil {
				return nil, fmt.Errorf(clientCreationErrorTemplate, clientError)
			}
			dependencies.CheckRunCreator = notificationClient
		}
	}

	service, serviceError := NewService(configuration, dependencies, builder.resolveLogLevel(), logger)
	if serviceError != nil {
		return nil, fmt.Errorf(serviceCreationErrorTemplate, serviceError)
	}

	return service, nil
}

// createArchiveClient returns a GitHub CLI client authenticated with the
// archive credential, or nil when no archive credential is configured.
func (builder *CommandBuilder) createArchiveClient(executor *execshell.ShellExecutor) (*githubcli.Client, error) {
	archiveToken, tokenFound := githubauth.ResolveArchiveToken(nil)
	if !tokenFound {
		return nil, nil
	}

	archiveClient, clientError := githubcli.NewClientWithToken(executor, archiveToken)
	if clientError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplate, clientError)
	}

	return archiveClient, nil
}

func (builder *CommandBuilder) createShellExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	commandRunner := execshell.NewOSCommandRunner()
	if builder.humanReadableLoggingEnabled() {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveLogLevel() utils.LogLevel {
	if builder.LogLevelProvider == nil {
		return utils.LogLevelInfo
	}
	return builder.LogLevelProvider()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}
