package core

import (
	"bytes"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/htpham/tutorhub/fs"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext, under fs/templates
		TemplateData interface{}
		TextContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render resolves the message's final text content from BodyStr or its template.
func (m *EmailMessage) Render(frontendBaseURL string) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	tmpl, err := texttmpl.ParseFS(appfs.Templates, "templates/"+m.TemplateName+".txt")
	if err != nil {
		return errors.Wrapf(err, "parsing template %q", m.TemplateName)
	}
	var buff bytes.Buffer
	data := ContextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}
	if err := tmpl.Execute(&buff, data); err != nil {
		return errors.Wrapf(err, "rendering template %q", m.TemplateName)
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != ""
}
