package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bennypowers/lighthouse-ci-action/internal/changeref"
	"github.com/bennypowers/lighthouse-ci-action/internal/dispatch"
	"github.com/bennypowers/lighthouse-ci-action/internal/gist"
	"github.com/bennypowers/lighthouse-ci-action/internal/githubcli"
	"github.com/bennypowers/lighthouse-ci-action/internal/results"
	"github.com/bennypowers/lighthouse-ci-action/internal/slack"
	"github.com/bennypowers/lighthouse-ci-action/internal/utils"
)

type stubResultStore struct {
	groupedResults results.GroupedResults
	loadError      error
	rawFilePaths   []string
	listError      error
	loadCallCount  int
	listCallCount  int
}

func (store *stubResultStore) LoadGroupedResults() (results.GroupedResults, error) {
	store.loadCallCount++
	return store.groupedResults, store.loadError
}

func (store *stubResultStore) ListRawResultFiles() ([]string, error) {
	store.listCallCount++
	return store.rawFilePaths, store.listError
}

type stubChangeResolver struct {
	reference    changeref.ChangeReference
	resolveError error
	callCount    int
}

func (resolver *stubChangeResolver) Resolve(_ context.Context) (changeref.ChangeReference, error) {
	resolver.callCount++
	return resolver.reference, resolver.resolveError
}

type stubArchiver struct {
	references []gist.ArchiveReference
	callCount  int
}

func (archiver *stubArchiver) ArchiveAll(_ context.Context, _ []string) []gist.ArchiveReference {
	archiver.callCount++
	return archiver.references
}

type stubChatMessenger struct {
	sentMessages []slack.Message
	sendError    error
}

func (messenger *stubChatMessenger) SendMessage(_ context.Context, message slack.Message) error {
	messenger.sentMessages = append(messenger.sentMessages, message)
	return messenger.sendError
}

type stubCheckRunCreator struct {
	createdSuites []string
	createdRuns   []githubcli.CheckRunDetails
	suiteError    error
	runError      error
}

func (creator *stubCheckRunCreator) CreateCheckSuite(_ context.Context, _ string, headSHA string) error {
	creator.createdSuites = append(creator.createdSuites, headSHA)
	return creator.suiteError
}

func (creator *stubCheckRunCreator) CreateCheckRun(_ context.Context, _ string, details githubcli.CheckRunDetails) error {
	creator.createdRuns = append(creator.createdRuns, details)
	return creator.runError
}

func failingGroupedResults() results.GroupedResults {
	return results.GroupByURL([]results.AuditResult{
		{AuditID: "first-contentful-paint", AuditProperty: "numericValue", AuditTitle: "First Contentful Paint", Operator: results.OperatorLessOrEqual, URL: "https://example.com/"},
	})
}

func enabledConfiguration() dispatch.CommandConfiguration {
	return dispatch.CommandConfiguration{
		ResultsDirectory: ".lighthouseci",
		Repository:       "owner/project",
		CommitSHA:        "abc123",
		Slack:            dispatch.SlackConfiguration{Enabled: true, WebhookURL: "https://hooks.slack.com/services/T/B/X"},
		CheckRun:         dispatch.CheckRunConfiguration{Enabled: true},
	}
}

func TestNewServiceRequiresCollaborators(testInstance *testing.T) {
	_, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{}, utils.LogLevelInfo, zap.NewNop())
	require.ErrorIs(testInstance, constructionError, dispatch.ErrDependenciesIncomplete)
}

func TestRunGateSuppressesReporting(testInstance *testing.T) {
	testCases := []struct {
		name             string
		logLevel         utils.LogLevel
		status           int
		expectDispatched bool
	}{
		{name: "info_reports_success", logLevel: utils.LogLevelInfo, status: 0, expectDispatched: true},
		{name: "info_reports_failure", logLevel: utils.LogLevelInfo, status: 1, expectDispatched: true},
		{name: "error_suppresses_success", logLevel: utils.LogLevelError, status: 0, expectDispatched: false},
		{name: "error_reports_failure", logLevel: utils.LogLevelError, status: 1, expectDispatched: true},
		{name: "warn_suppresses_everything", logLevel: utils.LogLevelWarn, status: 1, expectDispatched: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resultStore := &stubResultStore{groupedResults: failingGroupedResults()}
			messenger := &stubChatMessenger{}
			service, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{
				ResultStore:    resultStore,
				ChangeResolver: &stubChangeResolver{},
				ChatMessenger:  messenger,
			}, testCase.logLevel, zap.NewNop())
			require.NoError(testInstance, constructionError)

			require.NoError(testInstance, service.Run(context.Background(), testCase.status))
			if testCase.expectDispatched {
				require.NotEmpty(testInstance, messenger.sentMessages)
			} else {
				require.Empty(testInstance, messenger.sentMessages)
				require.Zero(testInstance, resultStore.loadCallCount)
			}
		})
	}
}

func TestRunWithoutResultsSkipsChannelsButResolvesChange(testInstance *testing.T) {
	changeResolver := &stubChangeResolver{reference: changeref.ChangeReference{CommitLink: "https://github.com/owner/project/commit/abc123"}}
	archiver := &stubArchiver{}
	messenger := &stubChatMessenger{}
	checkRunCreator := &stubCheckRunCreator{}

	service, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{
		ResultStore:     &stubResultStore{},
		ChangeResolver:  changeResolver,
		Archiver:        archiver,
		ChatMessenger:   messenger,
		CheckRunCreator: checkRunCreator,
	}, utils.LogLevelInfo, zap.NewNop())
	require.NoError(testInstance, constructionError)

	require.NoError(testInstance, service.Run(context.Background(), 1))
	require.Equal(testInstance, 1, changeResolver.callCount)
	require.Empty(testInstance, messenger.sentMessages)
	require.Empty(testInstance, checkRunCreator.createdRuns)
}

func TestRunWithBothChannelsDisabledInvokesNoAdapter(testInstance *testing.T) {
	configuration := enabledConfiguration()
	configuration.Slack.Enabled = false
	configuration.CheckRun.Enabled = false

	messenger := &stubChatMessenger{}
	checkRunCreator := &stubCheckRunCreator{}
	service, constructionError := dispatch.NewService(configuration, dispatch.Dependencies{
		ResultStore:     &stubResultStore{groupedResults: failingGroupedResults()},
		ChangeResolver:  &stubChangeResolver{},
		ChatMessenger:   messenger,
		CheckRunCreator: checkRunCreator,
	}, utils.LogLevelError, zap.NewNop())
	require.NoError(testInstance, constructionError)

	require.NoError(testInstance, service.Run(context.Background(), 1))
	require.Empty(testInstance, messenger.sentMessages)
	require.Empty(testInstance, checkRunCreator.createdSuites)
}

func TestRunDispatchesBothChannels(testInstance *testing.T) {
	resultStore := &stubResultStore{
		groupedResults: failingGroupedResults(),
		rawFilePaths:   []string{".lighthouseci/lhr-1700000000000.json"},
	}
	archiver := &stubArchiver{references: []gist.ArchiveReference{
		{URL: "https://example.com/", ID: "gist-one", Version: "rev-1"},
	}}
	messenger := &stubChatMessenger{}
	checkRunCreator := &stubCheckRunCreator{}

	service, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{
		ResultStore:     resultStore,
		ChangeResolver:  &stubChangeResolver{reference: changeref.ChangeReference{CommitLink: "https://github.com/owner/project/commit/abc123"}},
		Archiver:        archiver,
		ChatMessenger:   messenger,
		CheckRunCreator: checkRunCreator,
	}, utils.LogLevelInfo, zap.NewNop())
	require.NoError(testInstance, constructionError)

	require.NoError(testInstance, service.Run(context.Background(), 1))

	require.Len(testInstance, messenger.sentMessages, 1)
	require.Equal(testInstance, 1, archiver.callCount)
	require.Equal(testInstance, []string{"abc123"}, checkRunCreator.createdSuites)
	require.Len(testInstance, checkRunCreator.createdRuns, 1)
	require.Equal(testInstance, githubcli.CheckRunConclusionFailure, checkRunCreator.createdRuns[0].Conclusion)
	require.Equal(testInstance, "Lighthouse CI", checkRunCreator.createdRuns[0].Name)
	require.Contains(testInstance, checkRunCreator.createdRuns[0].Summary, "## 2 result(s) for https://example.com/")
	require.Contains(testInstance, checkRunCreator.createdRuns[0].Summary, "View report")
}

func TestRunSuccessStatusUsesSuccessConclusion(testInstance *testing.T) {
	checkRunCreator := &stubCheckRunCreator{}
	service, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{
		ResultStore:     &stubResultStore{groupedResults: failingGroupedResults()},
		ChangeResolver:  &stubChangeResolver{},
		ChatMessenger:   &stubChatMessenger{},
		CheckRunCreator: checkRunCreator,
	}, utils.LogLevelInfo, zap.NewNop())
	require.NoError(testInstance, constructionError)

	require.NoError(testInstance, service.Run(context.Background(), 0))
	require.Len(testInstance, checkRunCreator.createdRuns, 1)
	require.Equal(testInstance, githubcli.CheckRunConclusionSuccess, checkRunCreator.createdRuns[0].Conclusion)
}

func TestRunJoinsChannelFailures(testInstance *testing.T) {
	chatFailure := errors.New("webhook rejected")
	checkRunFailure := errors.New("check run rejected")

	service, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{
		ResultStore:     &stubResultStore{groupedResults: failingGroupedResults()},
		ChangeResolver:  &stubChangeResolver{},
		ChatMessenger:   &stubChatMessenger{sendError: chatFailure},
		CheckRunCreator: &stubCheckRunCreator{suiteError: checkRunFailure},
	}, utils.LogLevelInfo, zap.NewNop())
	require.NoError(testInstance, constructionError)

	runError := service.Run(context.Background(), 1)
	require.Error(testInstance, runError)
	require.ErrorIs(testInstance, runError, chatFailure)
	require.ErrorIs(testInstance, runError, checkRunFailure)
}

func TestRunPropagatesLoadFailure(testInstance *testing.T) {
	loadFailure := errors.New("malformed assertion results")
	messenger := &stubChatMessenger{}

	service, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{
		ResultStore:    &stubResultStore{loadError: loadFailure},
		ChangeResolver: &stubChangeResolver{},
		ChatMessenger:  messenger,
	}, utils.LogLevelInfo, zap.NewNop())
	require.NoError(testInstance, constructionError)

	runError := service.Run(context.Background(), 1)
	require.ErrorIs(testInstance, runError, loadFailure)
	require.Empty(testInstance, messenger.sentMessages)
}

func TestRunToleratesRawFileListingFailure(testInstance *testing.T) {
	messenger := &stubChatMessenger{}
	archiver := &stubArchiver{}

	service, constructionError := dispatch.NewService(enabledConfiguration(), dispatch.Dependencies{
		ResultStore: &stubResultStore{
			groupedResults: failingGroupedResults(),
			listError:      errors.New("permission denied"),
		},
		ChangeResolver: &stubChangeResolver{},
		Archiver:       archiver,
		ChatMessenger:  messenger,
	}, utils.LogLevelInfo, zap.NewNop())
	require.NoError(testInstance, constructionError)

	require.NoError(testInstance, service.Run(context.Background(), 1))
	require.Zero(testInstance, archiver.callCount)
	require.Len(testInstance, messenger.sentMessages, 1)
}

func TestConfigurationSanitize(testInstance *testing.T) {
	configuration := dispatch.CommandConfiguration{
		ResultsDirectory: "  ",
		Repository:       " owner/project ",
		CommitSHA:        " abc123 ",
		Slack:            dispatch.SlackConfiguration{WebhookURL: " https://hooks.slack.com/services/T/B/X "},
	}

	sanitized := configuration.Sanitize()
	require.Equal(testInstance, ".lighthouseci", sanitized.ResultsDirectory)
	require.Equal(testInstance, "owner/project", sanitized.Repository)
	require.Equal(testInstance, "abc123", sanitized.CommitSHA)
	require.Equal(testInstance, "https://hooks.slack.com/services/T/B/X", sanitized.Slack.WebhookURL)
}
