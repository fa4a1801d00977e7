package email

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"realtor/core/config"
	"realtor/core/logger"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single outgoing email
type Message struct {
	To       []string
	From     string
	Subject  string
	Body     string
	HTMLBody string
	Tag      string
}

// Sender delivers messages
type Sender interface {
	Send(msg Message) error
}

// ErrNoRecipients is returned for a message without recipients
var ErrNoRecipients = errors.New("email has no recipients")

// NewSender picks the provider configured by EMAIL_PROVIDER
func NewSender(cfg *config.Config, log logger.Logger) (Sender, error) {
	switch cfg.EmailProvider {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return &SendGridSender{client: sendgrid.NewSendClient(cfg.SendGridAPIKey), from: cfg.EmailFrom}, nil
	case "postmark":
		if cfg.PostmarkServerToken == "" {
			return nil, errors.New("POSTMARK_SERVER_TOKEN is required for the postmark provider")
		}
		return &PostmarkSender{
			client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
			from:   cfg.EmailFrom,
		}, nil
	case "", "log":
		return &LogSender{logger: log, from: cfg.EmailFrom}, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.EmailProvider)
	}
}

func validate(msg *Message, from string) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if msg.From == "" {
		msg.From = from
	}
	if msg.Body == "" && msg.HTMLBody == "" {
		return errors.New("email has no body")
	}
	return nil
}

// SendGridSender sends through the SendGrid v3 API
type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

func (s *SendGridSender) Send(msg Message) error {
	if err := validate(&msg, s.from); err != nil {
		return err
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("", msg.From))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)

	if msg.Body != "" {
		m.AddContent(mail.NewContent("text/plain", msg.Body))
	}
	if msg.HTMLBody != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTMLBody))
	}

	resp, err := s.client.Send(m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// PostmarkSender sends through the Postmark API
type PostmarkSender struct {
	client *postmark.Client
	from   string
}

func (s *PostmarkSender) Send(msg Message) error {
	if err := validate(&msg, s.from); err != nil {
		return err
	}

	_, err := s.client.SendEmail(postmark.Email{
		From:     msg.From,
		To:       strings.Join(msg.To, ","),
		Subject:  msg.Subject,
		TextBody: msg.Body,
		HtmlBody: msg.HTMLBody,
		Tag:      msg.Tag,
	})
	if err != nil {
		return fmt.Errorf("postmark: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
// Sent messages are kept for inspection.
type LogSender struct {
	logger logger.Logger
	from   string

	mu   sync.Mutex
	sent []Message
}

func NewLogSender(log logger.Logger, from string) *LogSender {
	return &LogSender{logger: log, from: from}
}

func (s *LogSender) Send(msg Message) error {
	if err := validate(&msg, s.from); err != nil {
		return err
	}
	s.logger.Info("email (log provider)",
		logger.String("to", strings.Join(msg.To, ",")),
		logger.String("subject", msg.Subject))

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the delivered messages
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
