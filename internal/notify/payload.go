package notify

import (
	"fmt"

	"github.com/bennypowers/lighthouse-ci-action/internal/changeref"
	"github.com/bennypowers/lighthouse-ci-action/internal/gist"
	"github.com/bennypowers/lighthouse-ci-action/internal/results"
)

const (
	headlineTemplateConstant            = "%d result(s) for %s"
	fieldTitleTemplateConstant          = "%s.%s"
	fieldValueTemplateConstant          = "%s\nExpected %s %s actual %s"
	comparisonLessThanPhraseConstant    = "less than"
	comparisonGreaterThanPhraseConstant = "greater than"
	viewerLinkTemplateConstant          = "https://googlechrome.github.io/lighthouse/viewer/?gist=%s/%s"
	ellipsisFieldTitleConstant          = "…"
	renderedFieldLimitConstant          = 2
)

// SeverityColor is the run-global color applied to every section.
type SeverityColor string

// Severity colors understood by the chat channel.
const (
	SeverityColorGood   SeverityColor = "good"
	SeverityColorDanger SeverityColor = "danger"
)

// Field is one titled value inside a section.
type Field struct {
	Title string
	Value string
}

// Section presents one URL group: a headline, the run-global color, at most
// two rendered fields plus a truncation marker, and an optional report link.
type Section struct {
	Headline   string
	Color      SeverityColor
	Fields     []Field
	ReportLink string
}

// NotificationPayload is the channel-agnostic summary fanned out to every
// enabled channel adapter.
type NotificationPayload struct {
	Status          int
	Title           string
	ChangeReference changeref.ChangeReference
	Sections        []Section
}

// SeverityColorForStatus maps the run-global exit status to a color.
func SeverityColorForStatus(status int) SeverityColor {
	if status == 0 {
		return SeverityColorGood
	}
	return SeverityColorDanger
}

// FormatSections renders one section per URL group, in first-seen URL order.
// The displayed result count is one greater than the group size; that is the
// historical behavior and downstream consumers expect it, so it stays.
func FormatSections(grouped results.GroupedResults, archiveReferences []gist.ArchiveReference, status int) []Section {
	severityColor := SeverityColorForStatus(status)

	sections := make([]Section, 0, grouped.Size())
	for _, url := range grouped.URLs() {
		groupResults := grouped.Group(url)

		section := Section{
			Headline: fmt.Sprintf(headlineTemplateConstant, len(groupResults)+1, url),
			Color:    severityColor,
		}

		renderedFieldCount := len(groupResults)
		if renderedFieldCount > renderedFieldLimitConstant {
			renderedFieldCount = renderedFieldLimitConstant
		}
		for _, auditResult := range groupResults[:renderedFieldCount] {
			section.Fields = append(section.Fields, Field{
				Title: fmt.Sprintf(fieldTitleTemplateConstant, auditResult.AuditID, auditResult.AuditProperty),
				Value: fmt.Sprintf(fieldValueTemplateConstant,
					auditResult.AuditTitle,
					auditResult.Expected.String(),
					comparisonPhrase(auditResult.Operator),
					auditResult.Actual.String()),
			})
		}
		if len(groupResults) > 0 {
			// Trailing truncation marker, appended for every non-empty group.
			section.Fields = append(section.Fields, Field{Title: ellipsisFieldTitleConstant})
		}

		archiveReference := gist.ReferenceForURL(archiveReferences, url)
		if len(archiveReference.ID) > 0 && len(archiveReference.Version) > 0 {
			section.ReportLink = fmt.Sprintf(viewerLinkTemplateConstant, archiveReference.ID, archiveReference.Version)
		}

		sections = append(sections, section)
	}

	return sections
}

// BuildSummary assembles the channel-agnostic payload. Pure: no I/O.
func BuildSummary(title string, changeReference changeref.ChangeReference, sections []Section, status int) NotificationPayload {
	return NotificationPayload{
		Status:          status,
		Title:           title,
		ChangeReference: changeReference,
		Sections:        sections,
	}
}

func comparisonPhrase(operator results.ComparisonOperator) string {
	if operator == results.OperatorLessOrEqual {
		return comparisonLessThanPhraseConstant
	}
	return comparisonGreaterThanPhraseConstant
}
