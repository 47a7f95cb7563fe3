package models

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To          []string               `json:"to"`
	Cc          []string               `json:"cc,omitempty"`
	Bcc         []string               `json:"bcc,omitempty"`
	Subject     string                 `json:"subject"`
	Body        string                 `json:"body"`
	HTMLBody    string                 `json:"htmlBody,omitempty"`
	From        string                 `json:"from"`
	FromName    string                 `json:"fromName,omitempty"`
	ReplyTo     string                 `json:"replyTo,omitempty"`
	TemplateID  string                 `json:"templateId,omitempty"`
	Variables   map[string]interface{} `json:"variables,omitempty"`
	Attachments []EmailAttachment      `json:"attachments,omitempty"`
}

// EmailAttachment represents an email attachment
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
