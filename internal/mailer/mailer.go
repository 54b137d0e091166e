package mailer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/username/odoocli/internal/config"
)

// TypeTextCSV is the content type of report attachments
const TypeTextCSV mail.ContentType = "text/csv"

// Message is one report mail
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Mailer delivers report mails through SMTP
type Mailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// New creates a new mailer; cfg must name a server and a sender
func New(cfg config.MailConfig, logger *zap.Logger) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mail config: %w", err)
	}
	return &Mailer{cfg: cfg, logger: logger}, nil
}

func splitAddresses(list string) []string {
	var out []string
	for _, a := range strings.Split(list, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Build assembles the message: plain text body plus the CSV attachment
func (m *Mailer) Build(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	if cc := splitAddresses(m.cfg.CC); len(cc) > 0 {
		if err := out.Cc(cc...); err != nil {
			return nil, fmt.Errorf("invalid cc %q: %w", m.cfg.CC, err)
		}
	}
	if bcc := splitAddresses(m.cfg.BCC); len(bcc) > 0 {
		if err := out.Bcc(bcc...); err != nil {
			return nil, fmt.Errorf("invalid bcc %q: %w", m.cfg.BCC, err)
		}
	}
	if m.cfg.ReplyTo != "" {
		if err := out.ReplyTo(m.cfg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", m.cfg.ReplyTo, err)
		}
	}

	out.Subject(msg.Subject)
	out.SetDate()
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	if msg.AttachmentName != "" {
		err := out.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment),
			mail.WithFileContentType(TypeTextCSV))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", msg.AttachmentName, err)
		}
	}
	return out, nil
}

func (m *Mailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.GetPort()),
		mail.WithTLSPolicy(mail.NoTLS),
	}
	if m.cfg.TLS {
		opts[1] = mail.WithTLSPolicy(mail.TLSMandatory)
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password))
	}
	return mail.NewClient(m.cfg.Server, opts...)
}

// Send delivers msg; there is no retry
func (m *Mailer) Send(msg Message) error {
	out, err := m.Build(msg)
	if err != nil {
		return err
	}

	c, err := m.client()
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := c.DialAndSend(out); err != nil {
		m.logger.Error("Failed to send mail",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	m.logger.Info("Mail sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("attachment", msg.AttachmentName))
	return nil
}
