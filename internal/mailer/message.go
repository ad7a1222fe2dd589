package mailer

// Message is one outbound email, provider-agnostic.
type Message struct {
	To          []string
	FromEmail   string
	FromName    string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// Attachment carries an inline file. Content is base64-encoded, the wire
// form the REST API accepts.
type Attachment struct {
	Filename    string `json:"filename"     validate:"required"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"      validate:"required"`
}

// From renders the RFC 5322 originator, "Name <addr>" when a display name
// is set.
func (m *Message) From() string {
	if m.FromName == "" {
		return m.FromEmail
	}

	return m.FromName + " <" + m.FromEmail + ">"
}
