package dispatch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/bennypowers/lighthouse-ci-action/internal/changeref"
	"github.com/bennypowers/lighthouse-ci-action/internal/gist"
	"github.com/bennypowers/lighthouse-ci-action/internal/githubcli"
	"github.com/bennypowers/lighthouse-ci-action/internal/notify"
	"github.com/bennypowers/lighthouse-ci-action/internal/results"
	"github.com/bennypowers/lighthouse-ci-action/internal/utils"
)

const (
	notificationTitleConstant              = "Lighthouse audit results"
	checkRunNameConstant                   = "Lighthouse CI"
	reportSuppressedMessageConstant        = "Report suppressed by log level"
	noResultsMessageConstant               = "No audit results to report"
	resultsLoadFailureMessageConstant      = "Unable to load audit results"
	changeResolutionFailureMessageConstant = "Unable to resolve change reference"
	rawFileListingFailureMessageConstant   = "Unable to list raw report files; skipping archiving"
	channelDispatchFailureMessageConstant  = "Notification dispatch failed"
	noChannelsEnabledMessageConstant       = "No notification channels enabled"
	dependenciesRequiredMessageConstant    = "dispatch service requires a result store and change resolver"
	logLevelFieldNameConstant              = "log_level"
	statusFieldNameConstant                = "status"
)

// ErrDependenciesIncomplete indicates required collaborators were absent.
var ErrDependenciesIncomplete = errors.New(dependenciesRequiredMessageConstant)

// Service runs the report pipeline for one commit.
type Service struct {
	configuration CommandConfiguration
	dependencies  Dependencies
	logLevel      utils.LogLevel
	logger        *zap.Logger
}

// NewService constructs a dispatch service.
func NewService(configuration CommandConfiguration, dependencies Dependencies, logLevel utils.LogLevel, logger *zap.Logger) (*Service, error) {
	if dependencies.ResultStore == nil || dependencies.ChangeResolver == nil {
		return nil, ErrDependenciesIncomplete
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		configuration: configuration.Sanitize(),
		dependencies:  dependencies,
		logLevel:      logLevel,
		logger:        logger,
	}, nil
}

// Run executes the pipeline for the provided exit status. Reporting is
// gated on the configured log level: info reports always, error reports
// only failed runs, anything else suppresses reporting entirely.
func (service *Service) Run(executionContext context.Context, status int) error {
	if !service.shouldReport(status) {
		service.logger.Debug(reportSuppressedMessageConstant,
			zap.String(logLevelFieldNameConstant, string(service.logLevel)),
			zap.Int(statusFieldNameConstant, status))
		return nil
	}

	groupedResults, changeReference, archiveReferences, gatherError := service.gatherInputs(executionContext)
	if gatherError != nil {
		return gatherError
	}

	if groupedResults.Size() == 0 {
		service.logger.Info(noResultsMessageConstant)
		return nil
	}

	sections := notify.FormatSections(groupedResults, archiveReferences, status)
	payload := notify.BuildSummary(notificationTitleConstant, changeReference, sections, status)

	return service.dispatchPayload(executionContext, payload)
}

func (service *Service) shouldReport(status int) bool {
	switch service.logLevel {
	case utils.LogLevelInfo:
		return true
	case utils.LogLevelError:
		return status != 0
	default:
		return false
	}
}

// gatherInputs runs result loading, change resolution, and archiving
// concurrently; none depends on another's output.
func (service *Service) gatherInputs(executionContext context.Context) (results.GroupedResults, changeref.ChangeReference, []gist.ArchiveReference, error) {
	var (
		groupedResults      results.GroupedResults
		resultsLoadError    error
		changeReference     changeref.ChangeReference
		changeResolveError  error
		archiveReferences   []gist.ArchiveReference
		rawFileListingError error
	)

	var waitGroup sync.WaitGroup
	waitGroup.Add(3)

	go func() {
		defer waitGroup.Done()
		groupedResults, resultsLoadError = service.dependencies.ResultStore.LoadGroupedResults()
	}()

	go func() {
		defer waitGroup.Done()
		changeReference, changeResolveError = service.dependencies.ChangeResolver.Resolve(executionContext)
	}()

	go func() {
		defer waitGroup.Done()
		var rawFilePaths []string
		rawFilePaths, rawFileListingError = service.dependencies.ResultStore.ListRawResultFiles()
		if rawFileListingError != nil {
			return
		}
		if service.dependencies.Archiver != nil {
			archiveReferences = service.dependencies.Archiver.ArchiveAll(executionContext, rawFilePaths)
		}
	}()

	waitGroup.Wait()

	if resultsLoadError != nil {
		service.logger.Error(resultsLoadFailureMessageConstant, zap.Error(resultsLoadError))
		return results.GroupedResults{}, changeref.ChangeReference{}, nil, resultsLoadError
	}
	if changeResolveError != nil {
		service.logger.Error(changeResolutionFailureMessageConstant, zap.Error(changeResolveError))
		return results.GroupedResults{}, changeref.ChangeReference{}, nil, changeResolveError
	}
	if rawFileListingError != nil {
		// Archiving is best effort; notifications still go out without links.
		service.logger.Warn(rawFileListingFailureMessageConstant, zap.Error(rawFileListingError))
	}

	return groupedResults, changeReference, archiveReferences, nil
}

// dispatchPayload fans the payload out to every enabled channel, waits for
// all of them, and joins their failures into a single returned error.
func (service *Service) dispatchPayload(executionContext context.Context, payload notify.NotificationPayload) error {
	chatEnabled := service.chatChannelEnabled()
	checkRunEnabled := service.checkRunChannelEnabled()

	if !chatEnabled && !checkRunEnabled {
		service.logger.Info(noChannelsEnabledMessageConstant)
		return nil
	}

	var chatError error
	var checkRunError error

	var waitGroup sync.WaitGroup
	if chatEnabled {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			chatError = service.dependencies.ChatMessenger.SendMessage(executionContext, notify.SlackMessage(payload))
		}()
	}
	if checkRunEnabled {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			checkRunError = service.publishCheckRun(executionContext, payload)
		}()
	}
	waitGroup.Wait()

	dispatchError := errors.Join(chatError, checkRunError)
	if dispatchError != nil {
		service.logger.Error(channelDispatchFailureMessageConstant, zap.Error(dispatchError))
		return dispatchError
	}

	return nil
}

func (service *Service) chatChannelEnabled() bool {
	return service.configuration.Slack.Enabled &&
		len(service.configuration.Slack.WebhookURL) > 0 &&
		service.dependencies.ChatMessenger != nil
}

func (service *Service) checkRunChannelEnabled() bool {
	return service.configuration.CheckRun.Enabled && service.dependencies.CheckRunCreator != nil
}

func (service *Service) publishCheckRun(executionContext context.Context, payload notify.NotificationPayload) error {
	suiteError := service.dependencies.CheckRunCreator.CreateCheckSuite(executionContext, service.configuration.Repository, service.configuration.CommitSHA)
	if suiteError != nil {
		return suiteError
	}

	conclusion := githubcli.CheckRunConclusionSuccess
	if payload.Status != 0 {
		conclusion = githubcli.CheckRunConclusionFailure
	}

	outputTitle, outputSummary := notify.CheckRunOutput(payload)

	return service.dependencies.CheckRunCreator.CreateCheckRun(executionContext, service.configuration.Repository, githubcli.CheckRunDetails{
		HeadSHA:    service.configuration.CommitSHA,
		Name:       checkRunNameConstant,
		Conclusion: conclusion,
		Title:      outputTitle,
		Summary:    outputSummary,
	})
}
