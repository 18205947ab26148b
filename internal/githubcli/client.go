package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bennypowers/lighthouse-ci-action/internal/execshell"
)

const (
	pullRequestSubcommandConstant           = "pr"
	listSubcommandConstant                  = "list"
	apiSubcommandConstant                   = "api"
	jsonFlagConstant                        = "--json"
	repoFlagConstant                        = "--repo"
	stateFlagConstant                       = "--state"
	limitFlagConstant                       = "--limit"
	paginateFlagConstant                    = "--paginate"
	methodFlagConstant                      = "-X"
	inputFlagConstant                       = "--input"
	stdinReferenceConstant                  = "-"
	acceptHeaderFlagConstant                = "-H"
	acceptHeaderValueConstant               = "Accept: application/vnd.github+json"
	httpMethodPostConstant                  = "POST"
	httpMethodPatchConstant                 = "PATCH"
	pullRequestStateOpenConstant            = "open"
	pullRequestLimitValueConstant           = "100"
	pullRequestJSONFieldsConstant           = "headRefOid,url"
	gistsEndpointConstant                   = "gists"
	gistEndpointTemplateConstant            = "gists/%s"
	checkRunsEndpointTemplateConstant       = "repos/%s/check-runs"
	checkSuitesEndpointTemplateConstant     = "repos/%s/check-suites"
	checkRunStatusCompletedConstant         = "completed"
	tokenEnvironmentVariableConstant        = "GH_TOKEN"
	repositoryFieldNameConstant             = "repository"
	headShaFieldNameConstant                = "head_sha"
	gistIdentifierFieldNameConstant         = "gist_id"
	gistFilesFieldNameConstant              = "files"
	checkRunNameFieldNameConstant           = "name"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"

	listOpenPullRequestsOperationNameConstant = OperationName("ListOpenPullRequests")
	createCheckSuiteOperationNameConstant     = OperationName("CreateCheckSuite")
	createCheckRunOperationNameConstant       = OperationName("CreateCheckRun")
	listGistsOperationNameConstant            = OperationName("ListGists")
	createGistOperationNameConstant           = OperationName("CreateGist")
	updateGistOperationNameConstant           = OperationName("UpdateGist")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// PullRequest represents minimal pull request details returned by GitHub CLI.
type PullRequest struct {
	HeadSHA string
	HTMLURL string
}

// Gist represents an existing gist owned by the authenticated identity.
type Gist struct {
	ID        string
	FileNames []string
}

// GistReference identifies a concrete gist revision after a create or update call.
type GistReference struct {
	ID      string
	Version string
}

// CheckRunConclusion enumerates accepted check-run conclusions.
type CheckRunConclusion string

// Check run conclusion values used by the report pipeline.
const (
	CheckRunConclusionSuccess CheckRunConclusion = "success"
	CheckRunConclusionFailure CheckRunConclusion = "failure"
)

// CheckRunDetails carries the inputs for creating a completed check run.
type CheckRunDetails struct {
	HeadSHA    string
	Name       string
	Conclusion CheckRunConclusion
	Title      string
	Summary    string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
	token    string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub CLI client using ambient gh authentication.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	return NewClientWithToken(executor, "")
}

// NewClientWithToken constructs a GitHub CLI client that authenticates every
// invocation with the provided token.
func NewClientWithToken(executor GitHubCommandExecutor, token string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, token: strings.TrimSpace(token)}, nil
}

// ListOpenPullRequests enumerates open pull requests using gh pr list.
func (client *Client) ListOpenPullRequests(executionContext context.Context, repository string) ([]PullRequest, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := client.commandDetails([]string{
		pullRequestSubcommandConstant,
		listSubcommandConstant,
		repoFlagConstant,
		repositoryIdentifier,
		stateFlagConstant,
		pullRequestStateOpenConstant,
		jsonFlagConstant,
		pullRequestJSONFieldsConstant,
		limitFlagConstant,
		pullRequestLimitValueConstant,
	}, nil)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listOpenPullRequestsOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		HeadRefOid string `json:"headRefOid"`
		URL        string `json:"url"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listOpenPullRequestsOperationNameConstant, Cause: decodingError}
	}

	pullRequests := make([]PullRequest, 0, len(response))
	for _, pullRequestEntry := range response {
		pullRequests = append(pullRequests, PullRequest{
			HeadSHA: pullRequestEntry.HeadRefOid,
			HTMLURL: pullRequestEntry.URL,
		})
	}

	return pullRequests, nil
}

// CreateCheckSuite requests a check suite for the provided head commit using gh api.
func (client *Client) CreateCheckSuite(executionContext context.Context, repository string, headSHA string) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(headSHA)) == 0 {
		return InvalidInputError{FieldName: headShaFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		HeadSHA string `json:"head_sha"`
	}{HeadSHA: headSHA}

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return PayloadEncodingError{Operation: createCheckSuiteOperationNameConstant, Cause: encodingError}
	}

	commandDetails := client.commandDetails(
		apiEndpointArguments(fmt.Sprintf(checkSuitesEndpointTemplateConstant, repositoryIdentifier), httpMethodPostConstant),
		payloadBytes,
	)

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: createCheckSuiteOperationNameConstant, Cause: executionError}
	}

	return nil
}

// CreateCheckRun publishes a completed check run using gh api.
func (client *Client) CreateCheckRun(executionContext context.Context, repository string, details CheckRunDetails) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(details.HeadSHA)) == 0 {
		return InvalidInputError{FieldName: headShaFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(details.Name)) == 0 {
		return InvalidInputError{FieldName: checkRunNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Name       string `json:"name"`
		HeadSHA    string `json:"head_sha"`
		Status     string `json:"status"`
		Conclusion string `json:"conclusion"`
		Output     struct {
			Title   string `json:"title"`
			Summary string `json:"summary"`
		} `json:"output"`
	}{
		Name:       details.Name,
		HeadSHA:    details.HeadSHA,
		Status:     checkRunStatusCompletedConstant,
		Conclusion: string(details.Conclusion),
	}
	payload.Output.Title = details.Title
	payload.Output.Summary = details.Summary

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return PayloadEncodingError{Operation: createCheckRunOperationNameConstant, Cause: encodingError}
	}

	commandDetails := client.commandDetails(
		apiEndpointArguments(fmt.Sprintf(checkRunsEndpointTemplateConstant, repositoryIdentifier), httpMethodPostConstant),
		payloadBytes,
	)

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: createCheckRunOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ListGists enumerates gists owned by the authenticated identity using gh api.
func (client *Client) ListGists(executionContext context.Context) ([]Gist, error) {
	commandDetails := client.commandDetails([]string{
		apiSubcommandConstant,
		gistsEndpointConstant,
		paginateFlagConstant,
	}, nil)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listGistsOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		ID    string                     `json:"id"`
		Files map[string]json.RawMessage `json:"files"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listGistsOperationNameConstant, Cause: decodingError}
	}

	gists := make([]Gist, 0, len(response))
	for _, gistEntry := range response {
		fileNames := make([]string, 0, len(gistEntry.Files))
		for fileName := range gistEntry.Files {
			fileNames = append(fileNames, fileName)
		}
		gists = append(gists, Gist{ID: gistEntry.ID, FileNames: fileNames})
	}

	return gists, nil
}

// CreateGist creates a secret gist holding the provided files using gh api.
func (client *Client) CreateGist(executionContext context.Context, files map[string]string) (GistReference, error) {
	if len(files) == 0 {
		return GistReference{}, InvalidInputError{FieldName: gistFilesFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payloadBytes, encodingError := encodeGistFilesPayload(files)
	if encodingError != nil {
		return GistReference{}, PayloadEncodingError{Operation: createGistOperationNameConstant, Cause: encodingError}
	}

	commandDetails := client.commandDetails(
		apiEndpointArguments(gistsEndpointConstant, httpMethodPostConstant),
		payloadBytes,
	)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return GistReference{}, OperationError{Operation: createGistOperationNameConstant, Cause: executionError}
	}

	return decodeGistReference(createGistOperationNameConstant, executionResult.StandardOutput)
}

// UpdateGist appends a new revision to an existing gist using gh api.
func (client *Client) UpdateGist(executionContext context.Context, gistIdentifier string, files map[string]string) (GistReference, error) {
	trimmedIdentifier := strings.TrimSpace(gistIdentifier)
	if len(trimmedIdentifier) == 0 {
		return GistReference{}, InvalidInputError{FieldName: gistIdentifierFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(files) == 0 {
		return GistReference{}, InvalidInputError{FieldName: gistFilesFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payloadBytes, encodingError := encodeGistFilesPayload(files)
	if encodingError != nil {
		return GistReference{}, PayloadEncodingError{Operation: updateGistOperationNameConstant, Cause: encodingError}
	}

	commandDetails := client.commandDetails(
		apiEndpointArguments(fmt.Sprintf(gistEndpointTemplateConstant, trimmedIdentifier), httpMethodPatchConstant),
		payloadBytes,
	)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return GistReference{}, OperationError{Operation: updateGistOperationNameConstant, Cause: executionError}
	}

	return decodeGistReference(updateGistOperationNameConstant, executionResult.StandardOutput)
}

func (client *Client) commandDetails(arguments []string, standardInput []byte) execshell.CommandDetails {
	commandDetails := execshell.CommandDetails{
		Arguments:     arguments,
		StandardInput: standardInput,
	}
	if len(client.token) > 0 {
		commandDetails.EnvironmentVariables = map[string]string{tokenEnvironmentVariableConstant: client.token}
	}
	return commandDetails
}

func apiEndpointArguments(endpoint string, method string) []string {
	return []string{
		apiSubcommandConstant,
		endpoint,
		methodFlagConstant,
		method,
		inputFlagConstant,
		stdinReferenceConstant,
		acceptHeaderFlagConstant,
		acceptHeaderValueConstant,
	}
}

func encodeGistFilesPayload(files map[string]string) ([]byte, error) {
	type gistFileContent struct {
		Content string `json:"content"`
	}

	payload := struct {
		Files  map[string]gistFileContent `json:"files"`
		Public bool                       `json:"public"`
	}{Files: make(map[string]gistFileContent, len(files))}

	for fileName, fileContent := range files {
		payload.Files[fileName] = gistFileContent{Content: fileContent}
	}

	return json.Marshal(payload)
}

func decodeGistReference(operation OperationName, standardOutput string) (GistReference, error) {
	var response struct {
		ID      string `json:"id"`
		History []struct {
			Version string `json:"version"`
		} `json:"history"`
	}

	decodingError := json.Unmarshal([]byte(standardOutput), &response)
	if decodingError != nil {
		return GistReference{}, ResponseDecodingError{Operation: operation, Cause: decodingError}
	}

	reference := GistReference{ID: response.ID}
	if len(response.History) > 0 {
		reference.Version = response.History[0].Version
	}
	return reference, nil
}
