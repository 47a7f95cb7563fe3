package emailsend

import (
	"context"
	"strings"
	"testing"
	"time"

	"shopchat-workers/internal/common/errors"
	"shopchat-workers/internal/common/logger"
	"shopchat-workers/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type mockSES struct {
	lastInput *ses.SendEmailInput
	err       error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
}

type mockSNS struct {
	lastInput *sns.PublishInput
	calls     int
	err       error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.lastInput = params
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createValidConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Provider:      "ses",
		DefaultFrom:   "noreply@shopchat.example.com",
		AWSRegion:     "ap-south-1",
		SNSTopicARN:   "arn:aws:sns:ap-south-1:123456789012:email-events",
	}
}

func createValidInput() *Input {
	return &Input{
		To:      "customer@example.com",
		Subject: "Your chat transcript",
		Body:    "Here is the conversation you asked for.",
	}
}

func createTestService(t *testing.T, config *Config, sesMock SESService, snsMock SNSService) *Service {
	if config == nil {
		config = createValidConfig()
	}
	deps := ServiceDependencies{
		Logger: logger.NewTestLogger(t),
		SES:    sesMock,
		SNS:    snsMock,
	}
	return NewService(deps, config)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestService_Execute_SES(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	service := createTestService(t, nil, sesMock, snsMock)

	output, err := service.Execute(context.Background(), createValidInput())
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.Equal(t, "ses-msg-1", output.MessageID)
	assert.Equal(t, "SES", output.Provider)
	assert.False(t, output.SentAt.IsZero())

	require.NotNil(t, sesMock.lastInput)
	assert.Equal(t, []string{"customer@example.com"}, sesMock.lastInput.Destination.ToAddresses)
	assert.Equal(t, "noreply@shopchat.example.com", *sesMock.lastInput.Source)
	// Plain-text input goes out as text, not HTML
	assert.NotNil(t, sesMock.lastInput.Message.Body.Text)
	assert.Nil(t, sesMock.lastInput.Message.Body.Html)
}

func TestService_Execute_HTMLBody(t *testing.T) {
	sesMock := &mockSES{}
	service := createTestService(t, nil, sesMock, nil)

	input := createValidInput()
	input.IsHTML = true
	input.Body = "<h1>Transcript</h1>"

	_, err := service.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.NotNil(t, sesMock.lastInput.Message.Body.Html)
	assert.Nil(t, sesMock.lastInput.Message.Body.Text)
}

func TestService_Execute_CCAndBCC(t *testing.T) {
	sesMock := &mockSES{}
	service := createTestService(t, nil, sesMock, nil)

	input := createValidInput()
	input.CC = "a@example.com, b@example.com"
	input.BCC = "audit@example.com"

	_, err := service.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, sesMock.lastInput.Destination.CcAddresses)
	assert.Equal(t, []string{"audit@example.com"}, sesMock.lastInput.Destination.BccAddresses)
}

// ==========================
// Delivery Event Tests
// ==========================

func TestService_Execute_PublishesDeliveryEvent(t *testing.T) {
	snsMock := &mockSNS{}
	service := createTestService(t, nil, &mockSES{}, snsMock)

	_, err := service.Execute(context.Background(), createValidInput())
	require.NoError(t, err)

	require.Equal(t, 1, snsMock.calls)
	assert.Equal(t, "arn:aws:sns:ap-south-1:123456789012:email-events", *snsMock.lastInput.TopicArn)
	assert.Contains(t, *snsMock.lastInput.Message, "email_sent")
	assert.Contains(t, *snsMock.lastInput.Message, "ses-msg-1")
}

func TestService_Execute_SNSFailureDoesNotFailSend(t *testing.T) {
	snsMock := &mockSNS{err: assert.AnError}
	service := createTestService(t, nil, &mockSES{}, snsMock)

	output, err := service.Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.True(t, output.Success)
}

func TestService_Execute_NoTopicSkipsPublish(t *testing.T) {
	config := createValidConfig()
	config.SNSTopicARN = ""
	snsMock := &mockSNS{}
	service := createTestService(t, config, &mockSES{}, snsMock)

	_, err := service.Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.Zero(t, snsMock.calls)
}

// ==========================
// Validation Tests
// ==========================

func TestService_Execute_AddressValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"bad to address", func(i *Input) { i.To = "not-an-email" }},
		{"bad cc address", func(i *Input) { i.CC = "ok@example.com, junk" }},
		{"bad bcc address", func(i *Input) { i.BCC = "@example.com" }},
		{"bad replyTo", func(i *Input) { i.ReplyTo = "nope@" }},
		{"domain without dot", func(i *Input) { i.To = "user@localhost" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := createTestService(t, nil, &mockSES{}, nil)
			input := createValidInput()
			tt.mutate(input)

			_, err := service.Execute(context.Background(), input)
			require.Error(t, err)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeEmailValidationFailed, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestService_Execute_SendFailureIsRetryable(t *testing.T) {
	sesMock := &mockSES{err: assert.AnError}
	service := createTestService(t, nil, sesMock, nil)

	_, err := service.Execute(context.Background(), createValidInput())
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeEmailSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// Message Building Tests
// ==========================

func TestService_BuildEmailMessage(t *testing.T) {
	service := createTestService(t, nil, nil, nil)

	input := createValidInput()
	input.From = "noreply@shopchat.example.com"
	input.CC = "cc@example.com"
	input.ReplyTo = "support@shopchat.example.com"
	input.Priority = "high"

	message := service.buildEmailMessage(input)

	assert.Contains(t, message, "From: noreply@shopchat.example.com\r\n")
	assert.Contains(t, message, "To: customer@example.com\r\n")
	assert.Contains(t, message, "Cc: cc@example.com\r\n")
	assert.Contains(t, message, "Reply-To: support@shopchat.example.com\r\n")
	assert.Contains(t, message, "X-Priority: 1\r\n")
	assert.Contains(t, message, "Content-Type: text/plain; charset=UTF-8\r\n")

	headerEnd := strings.Index(message, "\r\n\r\n")
	require.Greater(t, headerEnd, 0)
	assert.Equal(t, input.Body, message[headerEnd+4:])
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid ses config", func(c *Config) {}, false},
		{"valid smtp config", func(c *Config) {
			c.Provider = "smtp"
			c.SMTPHost = "smtp.example.com"
			c.SMTPPort = 587
		}, false},
		{"unknown provider", func(c *Config) { c.Provider = "sendgrid" }, true},
		{"smtp without host", func(c *Config) {
			c.Provider = "smtp"
			c.SMTPPort = 587
		}, true},
		{"smtp with invalid port", func(c *Config) {
			c.Provider = "smtp"
			c.SMTPHost = "smtp.example.com"
			c.SMTPPort = 0
		}, true},
		{"ses without region", func(c *Config) { c.AWSRegion = "" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"missing default from", func(c *Config) { c.DefaultFrom = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ==========================
// Schema Tests
// ==========================

func TestGetInputSchema(t *testing.T) {
	schema := GetInputSchema()

	valid := map[string]interface{}{
		"to":      "customer@example.com",
		"subject": "Your transcript",
		"body":    "hello",
	}
	result := validation.ValidateInput(valid, schema)
	assert.True(t, result.Valid, "errors: %v", result.GetErrorMessages())

	missing := map[string]interface{}{"to": "customer@example.com"}
	result = validation.ValidateInput(missing, schema)
	assert.False(t, result.Valid)

	extra := map[string]interface{}{
		"to":      "customer@example.com",
		"subject": "s",
		"body":    "b",
		"rogue":   true,
	}
	result = validation.ValidateInput(extra, schema)
	assert.False(t, result.Valid, "additionalProperties is false for this task")
}
