package changeref_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bennypowers/lighthouse-ci-action/internal/changeref"
	"github.com/bennypowers/lighthouse-ci-action/internal/githubcli"
)

type stubPullRequestLister struct {
	pullRequests []githubcli.PullRequest
	listError    error
}

func (lister *stubPullRequestLister) ListOpenPullRequests(_ context.Context, _ string) ([]githubcli.PullRequest, error) {
	if lister.listError != nil {
		return nil, lister.listError
	}
	return lister.pullRequests, nil
}

func TestResolve(testInstance *testing.T) {
	testCases := []struct {
		name                    string
		repository              string
		commitSHA               string
		lister                  *stubPullRequestLister
		expectedCommitLink      string
		expectedPullRequestLink string
		expectedErrorMessage    string
	}{
		{
			name:       "matching_pull_request",
			repository: "owner/project",
			commitSHA:  "abc123",
			lister: &stubPullRequestLister{pullRequests: []githubcli.PullRequest{
				{HeadSHA: "other", HTMLURL: "https://github.com/owner/project/pull/6"},
				{HeadSHA: "abc123", HTMLURL: "https://github.com/owner/project/pull/7"},
				{HeadSHA: "abc123", HTMLURL: "https://github.com/owner/project/pull/8"},
			}},
			expectedCommitLink:      "https://github.com/owner/project/commit/abc123",
			expectedPullRequestLink: "https://github.com/owner/project/pull/7",
		},
		{
			name:               "no_matching_pull_request",
			repository:         "owner/project",
			commitSHA:          "abc123",
			lister:             &stubPullRequestLister{pullRequests: []githubcli.PullRequest{{HeadSHA: "other"}}},
			expectedCommitLink: "https://github.com/owner/project/commit/abc123",
		},
		{
			name:               "lookup_failure_degrades_to_commit_link",
			repository:         "owner/project",
			commitSHA:          "abc123",
			lister:             &stubPullRequestLister{listError: errors.New("gh unavailable")},
			expectedCommitLink: "https://github.com/owner/project/commit/abc123",
		},
		{
			name:               "nil_lister_skips_lookup",
			repository:         "owner/project",
			commitSHA:          "abc123",
			expectedCommitLink: "https://github.com/owner/project/commit/abc123",
		},
		{
			name:                 "missing_repository",
			repository:           "  ",
			commitSHA:            "abc123",
			expectedErrorMessage: "repository required",
		},
		{
			name:                 "missing_commit_sha",
			repository:           "owner/project",
			commitSHA:            "",
			expectedErrorMessage: "commit SHA required",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var lister changeref.PullRequestLister
			if testCase.lister != nil {
				lister = testCase.lister
			}
			resolver := changeref.NewResolver(lister, testCase.repository, testCase.commitSHA, zap.NewNop())

			reference, resolveError := resolver.Resolve(context.Background())
			if len(testCase.expectedErrorMessage) > 0 {
				require.Error(testInstance, resolveError)
				require.Contains(testInstance, resolveError.Error(), testCase.expectedErrorMessage)
				return
			}

			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedCommitLink, reference.CommitLink)
			require.Equal(testInstance, testCase.expectedPullRequestLink, reference.PullRequestLink)
		})
	}
}
