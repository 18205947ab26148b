package notify_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bennypowers/lighthouse-ci-action/internal/changeref"
	"github.com/bennypowers/lighthouse-ci-action/internal/gist"
	"github.com/bennypowers/lighthouse-ci-action/internal/notify"
	"github.com/bennypowers/lighthouse-ci-action/internal/results"
)

func failingAuditResult(auditID string, url string) results.AuditResult {
	return results.AuditResult{
		AuditID:       auditID,
		AuditProperty: "numericValue",
		AuditTitle:    "First Contentful Paint",
		Expected:      json.Number("0.5"),
		Operator:      results.OperatorLessOrEqual,
		Actual:        json.Number("0.8"),
		URL:           url,
	}
}

func TestFormatSectionsHeadlineAndFields(testInstance *testing.T) {
	grouped := results.GroupByURL([]results.AuditResult{
		failingAuditResult("first-contentful-paint", "https://example.com/"),
		failingAuditResult("speed-index", "https://example.com/"),
		failingAuditResult("interactive", "https://example.com/"),
	})

	sections := notify.FormatSections(grouped, []gist.ArchiveReference{{}}, 1)
	require.Len(testInstance, sections, 1)

	section := sections[0]
	require.Equal(testInstance, "4 result(s) for https://example.com/", section.Headline)
	require.Equal(testInstance, notify.SeverityColorDanger, section.Color)
	require.Len(testInstance, section.Fields, 3)
	require.Equal(testInstance, "first-contentful-paint.numericValue", section.Fields[0].Title)
	require.Equal(testInstance, "First Contentful Paint\nExpected 0.5 less than actual 0.8", section.Fields[0].Value)
	require.Equal(testInstance, "speed-index.numericValue", section.Fields[1].Title)
	require.Equal(testInstance, "…", section.Fields[2].Title)
	require.Empty(testInstance, section.Fields[2].Value)
	require.Empty(testInstance, section.ReportLink)
}

func TestFormatSectionsFieldCountProperty(testInstance *testing.T) {
	testCases := []struct {
		groupSize          int
		expectedFieldCount int
	}{
		{groupSize: 0, expectedFieldCount: 0},
		{groupSize: 1, expectedFieldCount: 2},
		{groupSize: 2, expectedFieldCount: 3},
		{groupSize: 5, expectedFieldCount: 3},
	}

	for caseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_group_size_%d", caseIndex, testCase.groupSize), func(testInstance *testing.T) {
			var auditResults []results.AuditResult
			for resultIndex := 0; resultIndex < testCase.groupSize; resultIndex++ {
				auditResults = append(auditResults, failingAuditResult(fmt.Sprintf("audit-%d", resultIndex), "https://example.com/"))
			}

			sections := notify.FormatSections(results.GroupByURL(auditResults), nil, 0)
			if testCase.groupSize == 0 {
				require.Empty(testInstance, sections)
				return
			}
			require.Len(testInstance, sections[0].Fields, testCase.expectedFieldCount)
		})
	}
}

func TestFormatSectionsRunGlobalColor(testInstance *testing.T) {
	grouped := results.GroupByURL([]results.AuditResult{
		failingAuditResult("first-contentful-paint", "https://example.com/"),
		failingAuditResult("speed-index", "https://example.com/pricing"),
	})

	for _, section := range notify.FormatSections(grouped, nil, 0) {
		require.Equal(testInstance, notify.SeverityColorGood, section.Color)
	}
	for _, section := range notify.FormatSections(grouped, nil, 1) {
		require.Equal(testInstance, notify.SeverityColorDanger, section.Color)
	}
}

func TestFormatSectionsReportLink(testInstance *testing.T) {
	grouped := results.GroupByURL([]results.AuditResult{
		failingAuditResult("first-contentful-paint", "https://example.com/"),
		failingAuditResult("speed-index", "https://example.com/pricing"),
	})

	archiveReferences := []gist.ArchiveReference{
		{URL: "https://example.com/", ID: "gist-one", Version: "rev-1"},
	}

	sections := notify.FormatSections(grouped, archiveReferences, 1)
	require.Equal(testInstance, "https://googlechrome.github.io/lighthouse/viewer/?gist=gist-one/rev-1", sections[0].ReportLink)
	require.Empty(testInstance, sections[1].ReportLink)
}

func TestFormatSectionsGreaterThanPhrase(testInstance *testing.T) {
	auditResult := failingAuditResult("interactive", "https://example.com/")
	auditResult.Operator = results.OperatorGreaterOrEqual

	sections := notify.FormatSections(results.GroupByURL([]results.AuditResult{auditResult}), nil, 1)
	require.Contains(testInstance, sections[0].Fields[0].Value, "greater than")
}

func TestBuildSummary(testInstance *testing.T) {
	reference := changeref.ChangeReference{CommitLink: "https://github.com/owner/project/commit/abc123"}
	sections := []notify.Section{{Headline: "2 result(s) for https://example.com/"}}

	payload := notify.BuildSummary("Lighthouse audit results", reference, sections, 1)
	require.Equal(testInstance, 1, payload.Status)
	require.Equal(testInstance, "Lighthouse audit results", payload.Title)
	require.Equal(testInstance, reference, payload.ChangeReference)
	require.Equal(testInstance, sections, payload.Sections)
}
