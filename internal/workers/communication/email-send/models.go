package emailsend

import (
	"context"
	"time"

	"shopchat-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type Input struct {
	From        string                 `json:"from"`
	To          string                 `json:"to"`
	CC          string                 `json:"cc,omitempty"`
	BCC         string                 `json:"bcc,omitempty"`
	ReplyTo     string                 `json:"replyTo,omitempty"`
	Subject     string                 `json:"subject"`
	Body        string                 `json:"body"`
	IsHTML      bool                   `json:"isHtml"`
	Priority    string                 `json:"priority,omitempty"`
	Attachments []Attachment           `json:"attachments,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"` // Base64 encoded
}

type Output struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	SES    SESService
	SNS    SNSService
}
