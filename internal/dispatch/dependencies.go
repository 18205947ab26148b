package dispatch

import (
	"context"

	"github.com/bennypowers/lighthouse-ci-action/internal/changeref"
	"github.com/bennypowers/lighthouse-ci-action/internal/gist"
	"github.com/bennypowers/lighthouse-ci-action/internal/githubcli"
	"github.com/bennypowers/lighthouse-ci-action/internal/results"
	"github.com/bennypowers/lighthouse-ci-action/internal/slack"
)

// ResultStore loads audit results and raw report files from disk.
type ResultStore interface {
	LoadGroupedResults() (results.GroupedResults, error)
	ListRawResultFiles() ([]string, error)
}

// ChangeResolver resolves the change reference for the audited commit.
type ChangeResolver interface {
	Resolve(executionContext context.Context) (changeref.ChangeReference, error)
}

// Archiver uploads raw report files and returns archive references.
type Archiver interface {
	ArchiveAll(executionContext context.Context, filePaths []string) []gist.ArchiveReference
}

// ChatMessenger delivers a webhook message to the chat channel.
type ChatMessenger interface {
	SendMessage(executionContext context.Context, message slack.Message) error
}

// CheckRunCreator publishes check suites and check runs.
type CheckRunCreator interface {
	CreateCheckSuite(executionContext context.Context, repository string, headSHA string) error
	CreateCheckRun(executionContext context.Context, repository string, details githubcli.CheckRunDetails) error
}

// Dependencies aggregates the collaborators the dispatch service requires.
// ChatMessenger and CheckRunCreator may be nil when the matching channel is
// unconfigured; the service treats a nil adapter as a disabled channel.
type Dependencies struct {
	ResultStore     ResultStore
	ChangeResolver  ChangeResolver
	Archiver        Archiver
	ChatMessenger   ChatMessenger
	CheckRunCreator CheckRunCreator
}
