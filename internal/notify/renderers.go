package notify

import (
	"fmt"
	"strings"

	"github.com/bennypowers/lighthouse-ci-action/internal/slack"
)

const (
	changeLinkTitleConstant           = "View changes"
	reportLinkTitleConstant           = "View report"
	summaryHeadingTemplateConstant    = "## %s"
	summaryFieldTemplateConstant      = "**%s**\n%s"
	summaryReportLinkTemplateConstant = "[%s](%s)"
)

// SlackMessage renders the payload as a webhook message: a header attachment
// carrying the title and change link, then one section attachment plus one
// report-link attachment per URL group.
func SlackMessage(payload NotificationPayload) slack.Message {
	severityColor := string(SeverityColorForStatus(payload.Status))

	headerAttachment := slack.Attachment{
		Pretext:   payload.Title,
		Title:     changeLinkTitleConstant,
		TitleLink: payload.ChangeReference.CommitLink,
		Color:     severityColor,
	}
	if len(payload.ChangeReference.PullRequestLink) > 0 {
		headerAttachment.TitleLink = payload.ChangeReference.PullRequestLink
	}

	attachments := []slack.Attachment{headerAttachment}
	for _, section := range payload.Sections {
		sectionAttachment := slack.Attachment{
			Text:  section.Headline,
			Color: string(section.Color),
		}
		for _, field := range section.Fields {
			sectionAttachment.Fields = append(sectionAttachment.Fields, slack.Field{
				Title: field.Title,
				Value: field.Value,
			})
		}
		attachments = append(attachments, sectionAttachment)

		if len(section.ReportLink) > 0 {
			attachments = append(attachments, slack.Attachment{
				Title:     reportLinkTitleConstant,
				TitleLink: section.ReportLink,
				Color:     string(section.Color),
			})
		}
	}

	return slack.Message{Attachments: attachments}
}

// CheckRunOutput renders the payload as a check-run title and a single
// Markdown summary: each headline as a heading, fields as bold-title/value
// pairs, report links as Markdown links.
func CheckRunOutput(payload NotificationPayload) (string, string) {
	var summaryBlocks []string
	for _, section := range payload.Sections {
		summaryBlocks = append(summaryBlocks, fmt.Sprintf(summaryHeadingTemplateConstant, section.Headline))
		for _, field := range section.Fields {
			summaryBlocks = append(summaryBlocks, fmt.Sprintf(summaryFieldTemplateConstant, field.Title, field.Value))
		}
		if len(section.ReportLink) > 0 {
			summaryBlocks = append(summaryBlocks, fmt.Sprintf(summaryReportLinkTemplateConstant, reportLinkTitleConstant, section.ReportLink))
		}
	}

	return payload.Title, strings.Join(summaryBlocks, "\n\n")
}
