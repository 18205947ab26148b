package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	githubAPISubcommandNameConstant             = "api"
	githubPullRequestSubcommandNameConstant     = "pr"
	githubPullRequestListSubcommandNameConstant = "list"
	githubRepoFlagNameConstant                  = "--repo"
	gistsEndpointPrefixConstant                 = "gists"
	checkRunsEndpointSuffixConstant             = "/check-runs"
	checkSuitesEndpointSuffixConstant           = "/check-suites"
	reposEndpointPrefixConstant                 = "repos/"
	httpMethodFlagConstant                      = "-X"
	httpMethodPostConstant                      = "POST"
	httpMethodPatchConstant                     = "PATCH"
)

const (
	pullRequestListStartTemplateConstant            = "Listing open pull requests for %s"
	pullRequestListSuccessTemplateConstant          = "Listed open pull requests for %s"
	pullRequestListFailureTemplateConstant          = "Failed to list open pull requests for %s (exit code %d%s)"
	pullRequestListExecutionFailureTemplateConstant = "Unable to list open pull requests for %s: %s"
	gistListStartMessageConstant                    = "Listing archive gists"
	gistListSuccessMessageConstant                  = "Listed archive gists"
	gistListFailureTemplateConstant                 = "Failed to list archive gists (exit code %d%s)"
	gistListExecutionFailureTemplateConstant        = "Unable to list archive gists: %s"
	gistCreateStartMessageConstant                  = "Creating archive gist"
	gistCreateSuccessMessageConstant                = "Created archive gist"
	gistCreateFailureTemplateConstant               = "Failed to create archive gist (exit code %d%s)"
	gistCreateExecutionFailureTemplateConstant      = "Unable to create archive gist: %s"
	gistUpdateStartTemplateConstant                 = "Updating archive gist %s"
	gistUpdateSuccessTemplateConstant               = "Updated archive gist %s"
	gistUpdateFailureTemplateConstant               = "Failed to update archive gist %s (exit code %d%s)"
	gistUpdateExecutionFailureTemplateConstant      = "Unable to update archive gist %s: %s"
	checkRunStartTemplateConstant                   = "Creating check run for %s"
	checkRunSuccessTemplateConstant                 = "Created check run for %s"
	checkRunFailureTemplateConstant                 = "Failed to create check run for %s (exit code %d%s)"
	checkRunExecutionFailureTemplateConstant        = "Unable to create check run for %s: %s"
	checkSuiteStartTemplateConstant                 = "Creating check suite for %s"
	checkSuiteSuccessTemplateConstant               = "Created check suite for %s"
	checkSuiteFailureTemplateConstant               = "Failed to create check suite for %s (exit code %d%s)"
	checkSuiteExecutionFailureTemplateConstant      = "Unable to create check suite for %s: %s"
	webhookStartMessageConstant                     = "Posting chat webhook notification"
	webhookSuccessMessageConstant                   = "Posted chat webhook notification"
	webhookFailureTemplateConstant                  = "Failed to post chat webhook notification (exit code %d%s)"
	webhookExecutionFailureTemplateConstant         = "Unable to post chat webhook notification: %s"
)

// CommandMessageFormatter builds human-readable descriptions of command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a command that completed successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandCurl:
		return formatter.describeWebhookMessage(result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	subcommand := formatter.argumentAtIndex(arguments, 0)

	switch subcommand {
	case githubPullRequestSubcommandNameConstant:
		if formatter.argumentAtIndex(arguments, 1) == githubPullRequestListSubcommandNameConstant {
			repository := formatter.ensureValue(findFlagValue(arguments, githubRepoFlagNameConstant))
			return formatter.renderStage(stage,
				fmt.Sprintf(pullRequestListStartTemplateConstant, repository),
				fmt.Sprintf(pullRequestListSuccessTemplateConstant, repository),
				fmt.Sprintf(pullRequestListFailureTemplateConstant, repository, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
				fmt.Sprintf(pullRequestListExecutionFailureTemplateConstant, repository, formatter.describeFailure(failure)),
			)
		}
	case githubAPISubcommandNameConstant:
		endpoint := formatter.argumentAtIndex(arguments, 1)
		return formatter.describeGitHubAPIMessage(endpoint, arguments, result, failure, stage)
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubAPIMessage(endpoint string, arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	errorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)

	switch {
	case endpoint == gistsEndpointPrefixConstant:
		if findFlagValue(arguments, httpMethodFlagConstant) == httpMethodPostConstant {
			return formatter.renderStage(stage,
				gistCreateStartMessageConstant,
				gistCreateSuccessMessageConstant,
				fmt.Sprintf(gistCreateFailureTemplateConstant, result.ExitCode, errorSuffix),
				fmt.Sprintf(gistCreateExecutionFailureTemplateConstant, formatter.describeFailure(failure)),
			)
		}
		return formatter.renderStage(stage,
			gistListStartMessageConstant,
			gistListSuccessMessageConstant,
			fmt.Sprintf(gistListFailureTemplateConstant, result.ExitCode, errorSuffix),
			fmt.Sprintf(gistListExecutionFailureTemplateConstant, formatter.describeFailure(failure)),
		)
	case strings.HasPrefix(endpoint, gistsEndpointPrefixConstant+"/"):
		gistIdentifier := formatter.ensureValue(strings.TrimPrefix(endpoint, gistsEndpointPrefixConstant+"/"))
		return formatter.renderStage(stage,
			fmt.Sprintf(gistUpdateStartTemplateConstant, gistIdentifier),
			fmt.Sprintf(gistUpdateSuccessTemplateConstant, gistIdentifier),
			fmt.Sprintf(gistUpdateFailureTemplateConstant, gistIdentifier, result.ExitCode, errorSuffix),
			fmt.Sprintf(gistUpdateExecutionFailureTemplateConstant, gistIdentifier, formatter.describeFailure(failure)),
		)
	case strings.HasSuffix(endpoint, checkRunsEndpointSuffixConstant):
		repository := formatter.extractRepositoryFromEndpoint(endpoint, checkRunsEndpointSuffixConstant)
		return formatter.renderStage(stage,
			fmt.Sprintf(checkRunStartTemplateConstant, repository),
			fmt.Sprintf(checkRunSuccessTemplateConstant, repository),
			fmt.Sprintf(checkRunFailureTemplateConstant, repository, result.ExitCode, errorSuffix),
			fmt.Sprintf(checkRunExecutionFailureTemplateConstant, repository, formatter.describeFailure(failure)),
		)
	case strings.HasSuffix(endpoint, checkSuitesEndpointSuffixConstant):
		repository := formatter.extractRepositoryFromEndpoint(endpoint, checkSuitesEndpointSuffixConstant)
		return formatter.renderStage(stage,
			fmt.Sprintf(checkSuiteStartTemplateConstant, repository),
			fmt.Sprintf(checkSuiteSuccessTemplateConstant, repository),
			fmt.Sprintf(checkSuiteFailureTemplateConstant, repository, result.ExitCode, errorSuffix),
			fmt.Sprintf(checkSuiteExecutionFailureTemplateConstant, repository, formatter.describeFailure(failure)),
		)
	}

	return formatter.buildGenericMessage(ShellCommand{Name: CommandGitHub, Details: CommandDetails{Arguments: arguments}}, result, failure, stage)
}

// describeWebhookMessage never includes command arguments because webhook URLs carry credentials.
func (formatter CommandMessageFormatter) describeWebhookMessage(result ExecutionResult, failure error, stage messageStage) string {
	return formatter.renderStage(stage,
		webhookStartMessageConstant,
		webhookSuccessMessageConstant,
		fmt.Sprintf(webhookFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(webhookExecutionFailureTemplateConstant, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	return formatter.renderStage(stage,
		fmt.Sprintf(genericStartTemplateConstant, commandLabel),
		fmt.Sprintf(genericSuccessTemplateConstant, commandLabel),
		fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) renderStage(stage messageStage, start string, success string, failureMessage string, executionFailure string) string {
	switch stage {
	case messageStageStart:
		return start
	case messageStageSuccess:
		return success
	case messageStageFailure:
		return failureMessage
	default:
		return executionFailure
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

func (formatter CommandMessageFormatter) extractRepositoryFromEndpoint(endpoint string, suffix string) string {
	trimmedEndpoint := strings.TrimSuffix(endpoint, suffix)
	repository := strings.TrimPrefix(trimmedEndpoint, reposEndpointPrefixConstant)
	return formatter.ensureValue(repository)
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}
