package emailsend

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"shopchat-workers/internal/common/errors"
	"shopchat-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

type Service struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		logger:    deps.Logger,
		sesClient: deps.SES,
		snsClient: deps.SNS,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.From == "" {
		input.From = s.config.DefaultFrom
	}

	s.logger.Info("Executing email send", map[string]interface{}{
		"to":       input.To,
		"subject":  input.Subject,
		"from":     input.From,
		"isHtml":   input.IsHTML,
		"provider": s.config.Provider,
	})

	if err := s.validateEmailAddresses(input); err != nil {
		return nil, errors.NewEmailValidationFailedError(err.Error())
	}

	var messageID string
	var err error

	switch s.config.Provider {
	case "ses":
		messageID, err = s.sendSES(ctx, input)
	default:
		messageID, err = s.sendViaSMTP(ctx, input)
	}
	if err != nil {
		return nil, errors.NewEmailSendFailedError(s.config.Provider, err)
	}

	sentAt := time.Now()
	s.notifyDelivery(ctx, input, messageID, sentAt)

	s.logger.Info("Email sent successfully", map[string]interface{}{
		"to":        input.To,
		"messageId": messageID,
	})

	return &Output{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: messageID,
		Provider:  strings.ToUpper(s.config.Provider),
		SentAt:    sentAt,
	}, nil
}

func (s *Service) validateEmailAddresses(input *Input) error {
	if !s.isValidEmail(input.To) {
		return fmt.Errorf("invalid 'to' email address: %s", input.To)
	}

	if !s.isValidEmail(input.From) {
		return fmt.Errorf("invalid 'from' email address: %s", input.From)
	}

	if input.CC != "" {
		ccAddresses := strings.Split(input.CC, ",")
		for _, addr := range ccAddresses {
			if !s.isValidEmail(strings.TrimSpace(addr)) {
				return fmt.Errorf("invalid 'cc' email address: %s", addr)
			}
		}
	}

	if input.BCC != "" {
		bccAddresses := strings.Split(input.BCC, ",")
		for _, addr := range bccAddresses {
			if !s.isValidEmail(strings.TrimSpace(addr)) {
				return fmt.Errorf("invalid 'bcc' email address: %s", addr)
			}
		}
	}

	if input.ReplyTo != "" && !s.isValidEmail(input.ReplyTo) {
		return fmt.Errorf("invalid 'replyTo' email address: %s", input.ReplyTo)
	}

	return nil
}

func (s *Service) isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	// Basic email validation
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	if !strings.Contains(parts[1], ".") {
		return false
	}
	return true
}

func (s *Service) buildEmailMessage(input *Input) string {
	var builder strings.Builder

	// Headers
	builder.WriteString(fmt.Sprintf("From: %s\r\n", input.From))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", input.To))

	if input.CC != "" {
		builder.WriteString(fmt.Sprintf("Cc: %s\r\n", input.CC))
	}

	if input.ReplyTo != "" {
		builder.WriteString(fmt.Sprintf("Reply-To: %s\r\n", input.ReplyTo))
	}

	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", input.Subject))

	// Priority header
	if input.Priority != "" {
		switch strings.ToLower(input.Priority) {
		case "high":
			builder.WriteString("X-Priority: 1\r\n")
			builder.WriteString("Importance: high\r\n")
		case "low":
			builder.WriteString("X-Priority: 5\r\n")
			builder.WriteString("Importance: low\r\n")
		default:
			builder.WriteString("X-Priority: 3\r\n")
		}
	}

	// MIME headers
	builder.WriteString("MIME-Version: 1.0\r\n")

	if input.IsHTML {
		builder.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}

	builder.WriteString("\r\n")

	// Body
	builder.WriteString(input.Body)

	return builder.String()
}

func (s *Service) sendViaSMTP(ctx context.Context, input *Input) (string, error) {
	message := s.buildEmailMessage(input)

	if err := s.sendSMTP(ctx, input, message); err != nil {
		return "", err
	}
	return s.generateMessageID(input), nil
}

func (s *Service) sendSMTP(ctx context.Context, input *Input, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}

	// Build recipient list
	recipients := []string{input.To}
	if input.CC != "" {
		ccAddresses := strings.Split(input.CC, ",")
		for _, addr := range ccAddresses {
			recipients = append(recipients, strings.TrimSpace(addr))
		}
	}
	if input.BCC != "" {
		bccAddresses := strings.Split(input.BCC, ",")
		for _, addr := range bccAddresses {
			recipients = append(recipients, strings.TrimSpace(addr))
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if s.config.UseTLS {
		return s.sendWithTLS(addr, auth, input.From, recipients, []byte(message))
	}

	return smtp.SendMail(addr, auth, input.From, recipients, []byte(message))
}

func (s *Service) sendWithTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName:         s.config.SMTPHost,
		InsecureSkipVerify: false,
	}

	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}

	_, err = w.Write(msg)
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (s *Service) sendSES(ctx context.Context, input *Input) (string, error) {
	if s.sesClient == nil {
		return "", fmt.Errorf("ses client is not configured")
	}

	destination := &types.Destination{
		ToAddresses: []string{input.To},
	}
	if input.CC != "" {
		for _, addr := range strings.Split(input.CC, ",") {
			destination.CcAddresses = append(destination.CcAddresses, strings.TrimSpace(addr))
		}
	}
	if input.BCC != "" {
		for _, addr := range strings.Split(input.BCC, ",") {
			destination.BccAddresses = append(destination.BccAddresses, strings.TrimSpace(addr))
		}
	}

	body := &types.Body{}
	if input.IsHTML {
		body.Html = &types.Content{Data: aws.String(input.Body)}
	} else {
		body.Text = &types.Content{Data: aws.String(input.Body)}
	}

	result, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: destination,
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(input.Subject)},
			Body:    body,
		},
		Source: aws.String(input.From),
	})
	if err != nil {
		return "", err
	}

	if result.MessageId != nil {
		return *result.MessageId, nil
	}
	return uuid.New().String(), nil
}

// notifyDelivery publishes a delivery event so downstream consumers (ops
// dashboards, analytics) hear about transcript emails. Failures are logged
// and ignored.
func (s *Service) notifyDelivery(ctx context.Context, input *Input, messageID string, sentAt time.Time) {
	if s.snsClient == nil || s.config.SNSTopicARN == "" {
		return
	}

	event := map[string]interface{}{
		"event":     "email_sent",
		"to":        input.To,
		"subject":   input.Subject,
		"messageId": messageID,
		"provider":  s.config.Provider,
		"sentAt":    sentAt.UTC().Format(time.RFC3339),
	}
	payload, _ := json.Marshal(event)

	_, err := s.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.config.SNSTopicARN),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		s.logger.Warn("failed to publish delivery event", map[string]interface{}{
			"messageId": messageID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) generateMessageID(input *Input) string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("<%d.%s@%s>", timestamp, sanitizeEmail(input.To), s.config.SMTPHost)
}

func sanitizeEmail(email string) string {
	// Extract local part before @ for message ID
	parts := strings.Split(email, "@")
	if len(parts) > 0 {
		local := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, parts[0])

		if len(local) > 10 {
			local = local[:10]
		}
		return local
	}
	return "user"
}

func (s *Service) TestConnection(ctx context.Context) error {
	if s.config.Provider != "smtp" {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName:         s.config.SMTPHost,
			InsecureSkipVerify: false,
		}
		if err = client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	return client.Quit()
}
