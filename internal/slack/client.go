package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bennypowers/lighthouse-ci-action/internal/execshell"
)

const (
	silentFlagConstant                   = "-sS"
	failFlagConstant                     = "--fail"
	methodFlagConstant                   = "-X"
	httpMethodPostConstant               = "POST"
	headerFlagConstant                   = "-H"
	contentTypeHeaderConstant            = "Content-Type: application/json"
	dataFlagConstant                     = "--data"
	stdinReferenceConstant               = "@-"
	executorNotConfiguredMessageConstant = "webhook command executor not configured"
	webhookURLRequiredMessageConstant    = "webhook URL required"
	sendFailureMessageTemplateConstant   = "webhook message delivery failed: %s"
	encodeFailureMessageTemplateConstant = "webhook message encoding failed: %s"
)

// Field renders a short titled value inside an attachment.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Attachment is a single Slack message attachment.
type Attachment struct {
	Pretext   string  `json:"pretext,omitempty"`
	Title     string  `json:"title,omitempty"`
	TitleLink string  `json:"title_link,omitempty"`
	Text      string  `json:"text,omitempty"`
	Color     string  `json:"color,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
}

// Message is the incoming-webhook payload.
type Message struct {
	Attachments []Attachment `json:"attachments"`
}

// WebhookCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type WebhookCommandExecutor interface {
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// WebhookClient delivers messages to a single Slack incoming webhook.
type WebhookClient struct {
	executor   WebhookCommandExecutor
	webhookURL string
}

var (
	// ErrExecutorNotConfigured indicates the client was built without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrWebhookURLRequired indicates the webhook URL was absent or blank.
	ErrWebhookURLRequired = errors.New(webhookURLRequiredMessageConstant)
)

// MessageEncodingError wraps JSON encoding failures for outgoing messages.
type MessageEncodingError struct {
	Cause error
}

// Error describes the encoding failure.
func (encodingError MessageEncodingError) Error() string {
	return fmt.Sprintf(encodeFailureMessageTemplateConstant, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError MessageEncodingError) Unwrap() error {
	return encodingError.Cause
}

// DeliveryError wraps transport failures for outgoing messages.
type DeliveryError struct {
	Cause error
}

// Error describes the delivery failure.
func (deliveryError DeliveryError) Error() string {
	return fmt.Sprintf(sendFailureMessageTemplateConstant, deliveryError.Cause)
}

// Unwrap exposes the underlying error.
func (deliveryError DeliveryError) Unwrap() error {
	return deliveryError.Cause
}

// NewWebhookClient constructs a webhook client for the provided URL.
func NewWebhookClient(executor WebhookCommandExecutor, webhookURL string) (*WebhookClient, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	trimmedURL := strings.TrimSpace(webhookURL)
	if len(trimmedURL) == 0 {
		return nil, ErrWebhookURLRequired
	}
	return &WebhookClient{executor: executor, webhookURL: trimmedURL}, nil
}

// SendMessage posts the message to the configured webhook.
func (client *WebhookClient) SendMessage(executionContext context.Context, message Message) error {
	payloadBytes, encodingError := json.Marshal(message)
	if encodingError != nil {
		return MessageEncodingError{Cause: encodingError}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			silentFlagConstant,
			failFlagConstant,
			methodFlagConstant,
			httpMethodPostConstant,
			headerFlagConstant,
			contentTypeHeaderConstant,
			dataFlagConstant,
			stdinReferenceConstant,
			client.webhookURL,
		},
		StandardInput: payloadBytes,
	}

	_, executionError := client.executor.ExecuteCurl(executionContext, commandDetails)
	if executionError != nil {
		return DeliveryError{Cause: executionError}
	}

	return nil
}
