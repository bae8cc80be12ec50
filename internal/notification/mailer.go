package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/config"
)

// InvitationMailer delivers trip invitation emails. Delivery is
// best-effort: the invitation exists whether or not the mail goes out.
type InvitationMailer interface {
	SendInvitation(recipientEmail, tripName, invitationURL string) error
}

// SMTPInvitationMailer sends invitation emails using an SMTP server.
type SMTPInvitationMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPInvitationMailer constructs a new SMTPInvitationMailer from config.
func NewSMTPInvitationMailer(cfg config.EmailConfig) (*SMTPInvitationMailer, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp_host is required")
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("email from address is required")
	}

	return &SMTPInvitationMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}, nil
}

// SendInvitation dispatches an invitation email to a prospective collaborator.
func (m *SMTPInvitationMailer) SendInvitation(recipientEmail, tripName, invitationURL string) error {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		m.from, recipientEmail, fmt.Sprintf("You have been invited to join the trip %q", tripName))

	body := strings.Builder{}
	body.WriteString("Hello,\n\n")
	body.WriteString(fmt.Sprintf("You've been invited to collaborate on the trip %q on GlobeTrotter.\n", tripName))
	body.WriteString("Click the link below to view and accept the invitation:\n\n")
	body.WriteString(invitationURL + "\n\n")
	body.WriteString("This invitation is valid for 7 days. If you did not expect this email, you can ignore it.\n\n")
	body.WriteString("Happy travels,\nThe GlobeTrotter Team\n")

	message := []byte(headers + body.String())

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if strings.TrimSpace(m.username) != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{recipientEmail}, message)
}
