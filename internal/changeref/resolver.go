package changeref

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bennypowers/lighthouse-ci-action/internal/githubcli"
)

const (
	commitLinkTemplateConstant        = "https://github.com/%s/commit/%s"
	repositoryRequiredMessageConstant = "repository required to resolve change reference"
	commitShaRequiredMessageConstant  = "commit SHA required to resolve change reference"
	pullRequestLookupFailureMessage   = "Unable to list open pull requests; using commit link only"
)

// ChangeReference links a report run to the change that produced it.
type ChangeReference struct {
	CommitLink      string
	PullRequestLink string
}

// InvalidReferenceInputError indicates the resolver lacked repository or commit details.
type InvalidReferenceInputError struct {
	Message string
}

// Error describes the missing input.
func (inputError InvalidReferenceInputError) Error() string {
	return inputError.Message
}

// PullRequestLister is the pull request surface the resolver needs from githubcli.Client.
type PullRequestLister interface {
	ListOpenPullRequests(executionContext context.Context, repository string) ([]githubcli.PullRequest, error)
}

// Resolver resolves change references for a single repository and commit.
type Resolver struct {
	lister     PullRequestLister
	repository string
	commitSHA  string
	logger     *zap.Logger
}

// NewResolver constructs a resolver. A nil lister skips pull request lookup
// and resolves commit links only.
func NewResolver(lister PullRequestLister, repository string, commitSHA string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{lister: lister, repository: repository, commitSHA: commitSHA, logger: logger}
}

// Resolve returns the change reference for the configured commit. Pull
// request lookup failures degrade to a commit-only reference; the first
// open pull request whose head matches the commit wins.
func (resolver *Resolver) Resolve(executionContext context.Context) (ChangeReference, error) {
	trimmedRepository := strings.TrimSpace(resolver.repository)
	if len(trimmedRepository) == 0 {
		return ChangeReference{}, InvalidReferenceInputError{Message: repositoryRequiredMessageConstant}
	}
	trimmedCommitSHA := strings.TrimSpace(resolver.commitSHA)
	if len(trimmedCommitSHA) == 0 {
		return ChangeReference{}, InvalidReferenceInputError{Message: commitShaRequiredMessageConstant}
	}

	reference := ChangeReference{
		CommitLink: fmt.Sprintf(commitLinkTemplateConstant, trimmedRepository, trimmedCommitSHA),
	}

	if resolver.lister == nil {
		return reference, nil
	}

	pullRequests, listError := resolver.lister.ListOpenPullRequests(executionContext, trimmedRepository)
	if listError != nil {
		resolver.logger.Warn(pullRequestLookupFailureMessage, zap.Error(listError))
		return reference, nil
	}

	for _, pullRequest := range pullRequests {
		if pullRequest.HeadSHA == trimmedCommitSHA {
			reference.PullRequestLink = pullRequest.HTMLURL
			break
		}
	}

	return reference, nil
}
