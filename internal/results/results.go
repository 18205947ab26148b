package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	assertionResultsFileNameConstant        = "assertion-results.json"
	rawResultFileNamePatternConstant        = `^lhr-\d+\.json$`
	malformedResultsMessageTemplateConstant = "malformed assertion results in %s: %s"
	unknownOperatorMessageTemplateConstant  = "unknown comparison operator %q for audit %q"
)

var rawResultFileNameExpression = regexp.MustCompile(rawResultFileNamePatternConstant)

// ComparisonOperator is the wire representation of an assertion comparison.
type ComparisonOperator string

// Comparison operators emitted by Lighthouse CI assertions.
const (
	OperatorLessOrEqual    ComparisonOperator = "<="
	OperatorGreaterOrEqual ComparisonOperator = "=>"
)

// AuditResult is a single failed assertion from Lighthouse CI.
type AuditResult struct {
	AuditID       string             `json:"auditId"`
	AuditProperty string             `json:"auditProperty"`
	AuditTitle    string             `json:"auditTitle"`
	Expected      json.Number        `json:"expected"`
	Operator      ComparisonOperator `json:"operator"`
	Actual        json.Number        `json:"actual"`
	URL           string             `json:"url"`
}

// MalformedResultsError indicates the assertion results file could not be decoded.
type MalformedResultsError struct {
	FilePath string
	Cause    error
}

// Error describes the decoding failure.
func (resultsError MalformedResultsError) Error() string {
	return fmt.Sprintf(malformedResultsMessageTemplateConstant, resultsError.FilePath, resultsError.Cause)
}

// Unwrap exposes the underlying error.
func (resultsError MalformedResultsError) Unwrap() error {
	return resultsError.Cause
}

// UnknownOperatorError indicates an assertion carried an unrecognized operator.
type UnknownOperatorError struct {
	Operator ComparisonOperator
	AuditID  string
}

// Error describes the unrecognized operator.
func (operatorError UnknownOperatorError) Error() string {
	return fmt.Sprintf(unknownOperatorMessageTemplateConstant, string(operatorError.Operator), operatorError.AuditID)
}

// GroupedResults partitions audit results by URL while preserving the
// order URLs first appear in the assertion results file.
type GroupedResults struct {
	orderedURLs  []string
	resultsByURL map[string][]AuditResult
}

// URLs returns the audited URLs in first-appearance order.
func (grouped GroupedResults) URLs() []string {
	return grouped.orderedURLs
}

// Group returns the results recorded for the provided URL.
func (grouped GroupedResults) Group(url string) []AuditResult {
	return grouped.resultsByURL[url]
}

// Size returns the number of distinct audited URLs.
func (grouped GroupedResults) Size() int {
	return len(grouped.orderedURLs)
}

// GroupByURL partitions results by URL. Every result lands in exactly one
// group and each group keeps the original relative order.
func GroupByURL(auditResults []AuditResult) GroupedResults {
	grouped := GroupedResults{resultsByURL: map[string][]AuditResult{}}
	for _, auditResult := range auditResults {
		if _, seen := grouped.resultsByURL[auditResult.URL]; !seen {
			grouped.orderedURLs = append(grouped.orderedURLs, auditResult.URL)
		}
		grouped.resultsByURL[auditResult.URL] = append(grouped.resultsByURL[auditResult.URL], auditResult)
	}
	return grouped
}

// Store reads Lighthouse CI output from a single results directory.
type Store struct {
	resultsDirectory string
}

// NewStore constructs a store over the provided results directory.
func NewStore(resultsDirectory string) *Store {
	return &Store{resultsDirectory: resultsDirectory}
}

// LoadGroupedResults reads assertion-results.json and groups results by URL.
// A missing file yields an empty grouping, not an error; runs with no
// failing assertions do not write the file.
func (store *Store) LoadGroupedResults() (GroupedResults, error) {
	filePath := filepath.Join(store.resultsDirectory, assertionResultsFileNameConstant)

	fileContents, readError := os.ReadFile(filePath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return GroupByURL(nil), nil
		}
		return GroupedResults{}, MalformedResultsError{FilePath: filePath, Cause: readError}
	}

	var auditResults []AuditResult
	decodingError := json.Unmarshal(fileContents, &auditResults)
	if decodingError != nil {
		return GroupedResults{}, MalformedResultsError{FilePath: filePath, Cause: decodingError}
	}

	for _, auditResult := range auditResults {
		switch auditResult.Operator {
		case OperatorLessOrEqual, OperatorGreaterOrEqual:
		default:
			return GroupedResults{}, UnknownOperatorError{Operator: auditResult.Operator, AuditID: auditResult.AuditID}
		}
	}

	return GroupByURL(auditResults), nil
}

// ListRawResultFiles returns the paths of raw Lighthouse report files,
// lhr-<digits>.json, inside the results directory. A missing directory
// yields an empty list.
func (store *Store) ListRawResultFiles() ([]string, error) {
	directoryEntries, readError := os.ReadDir(store.resultsDirectory)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, readError
	}

	var filePaths []string
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		if rawResultFileNameExpression.MatchString(directoryEntry.Name()) {
			filePaths = append(filePaths, filepath.Join(store.resultsDirectory, directoryEntry.Name()))
		}
	}

	return filePaths, nil
}
