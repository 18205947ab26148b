// Package slack posts incoming-webhook messages through curl, carrying the
// attachment layout Slack expects for Lighthouse report notifications.
package slack
