package results_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bennypowers/lighthouse-ci-action/internal/results"
)

const sampleAssertionResultsConstant = `[
	{"auditId":"first-contentful-paint","auditProperty":"numericValue","auditTitle":"First Contentful Paint","expected":0.5,"operator":"<=","actual":0.8,"url":"https://example.com/"},
	{"auditId":"speed-index","auditProperty":"numericValue","auditTitle":"Speed Index","expected":0.5,"operator":"<=","actual":0.7,"url":"https://example.com/"},
	{"auditId":"interactive","auditProperty":"numericValue","auditTitle":"Time to Interactive","expected":0.9,"operator":"=>","actual":0.6,"url":"https://example.com/pricing"}
]`

func TestLoadGroupedResults(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		fileContents         string
		writeFile            bool
		expectedURLs         []string
		expectedGroupSizes   map[string]int
		expectedErrorMessage string
	}{
		{
			name:         "groups_by_url_in_order",
			fileContents: sampleAssertionResultsConstant,
			writeFile:    true,
			expectedURLs: []string{"https://example.com/", "https://example.com/pricing"},
			expectedGroupSizes: map[string]int{
				"https://example.com/":        2,
				"https://example.com/pricing": 1,
			},
		},
		{
			name:         "missing_file_yields_empty_grouping",
			writeFile:    false,
			expectedURLs: nil,
		},
		{
			name:                 "malformed_file",
			fileContents:         "not json",
			writeFile:            true,
			expectedErrorMessage: "malformed assertion results",
		},
		{
			name:                 "unknown_operator",
			fileContents:         `[{"auditId":"speed-index","operator":">=","url":"https://example.com/"}]`,
			writeFile:            true,
			expectedErrorMessage: `unknown comparison operator ">=" for audit "speed-index"`,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resultsDirectory := testInstance.TempDir()
			if testCase.writeFile {
				writeError := os.WriteFile(filepath.Join(resultsDirectory, "assertion-results.json"), []byte(testCase.fileContents), 0o644)
				require.NoError(testInstance, writeError)
			}

			store := results.NewStore(resultsDirectory)
			grouped, loadError := store.LoadGroupedResults()
			if len(testCase.expectedErrorMessage) > 0 {
				require.Error(testInstance, loadError)
				require.Contains(testInstance, loadError.Error(), testCase.expectedErrorMessage)
				return
			}

			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedURLs, grouped.URLs())
			require.Equal(testInstance, len(testCase.expectedURLs), grouped.Size())
			for url, expectedSize := range testCase.expectedGroupSizes {
				require.Len(testInstance, grouped.Group(url), expectedSize)
			}
		})
	}
}

func TestGroupByURLPartitionsEveryResultExactlyOnce(testInstance *testing.T) {
	auditResults := []results.AuditResult{
		{AuditID: "first-contentful-paint", URL: "https://example.com/"},
		{AuditID: "speed-index", URL: "https://example.com/pricing"},
		{AuditID: "interactive", URL: "https://example.com/"},
	}

	grouped := results.GroupByURL(auditResults)

	totalGroupedResults := 0
	for _, url := range grouped.URLs() {
		totalGroupedResults += len(grouped.Group(url))
	}
	require.Equal(testInstance, len(auditResults), totalGroupedResults)
	require.Equal(testInstance, []string{"https://example.com/", "https://example.com/pricing"}, grouped.URLs())
	require.Equal(testInstance, "first-contentful-paint", grouped.Group("https://example.com/")[0].AuditID)
	require.Equal(testInstance, "interactive", grouped.Group("https://example.com/")[1].AuditID)
}

func TestListRawResultFiles(testInstance *testing.T) {
	resultsDirectory := testInstance.TempDir()
	for _, fileName := range []string{"lhr-1700000000000.json", "lhr-1700000000001.json", "assertion-results.json", "lhr-notes.txt"} {
		writeError := os.WriteFile(filepath.Join(resultsDirectory, fileName), []byte("{}"), 0o644)
		require.NoError(testInstance, writeError)
	}

	store := results.NewStore(resultsDirectory)
	filePaths, listError := store.ListRawResultFiles()
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{
		filepath.Join(resultsDirectory, "lhr-1700000000000.json"),
		filepath.Join(resultsDirectory, "lhr-1700000000001.json"),
	}, filePaths)
}

func TestListRawResultFilesMissingDirectory(testInstance *testing.T) {
	store := results.NewStore(filepath.Join(testInstance.TempDir(), "absent"))
	filePaths, listError := store.ListRawResultFiles()
	require.NoError(testInstance, listError)
	require.Empty(testInstance, filePaths)
}
