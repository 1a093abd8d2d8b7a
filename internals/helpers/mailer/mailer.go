// file: internals/helpers/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"lingoschool_backend/internals/configs"
)

// Mailer: satu-satunya kanal email keluar (dipakai untuk OTP).
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

func New(cfg configs.MailConfig) (Mailer, error) {
	switch cfg.Driver {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for sendgrid driver")
		}
		return NewSendGrid(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail), nil
	case "console", "":
		return ConsoleMailer{}, nil
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", cfg.Driver)
	}
}

/* ===== SendGrid ===== */

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendGridMailer struct {
	key  string
	from *sgmail.Email
}

func NewSendGrid(key, fromName, fromEmail string) *SendGridMailer {
	return &SendGridMailer{key: key, from: sgmail.NewEmail(fromName, fromEmail)}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, html string) error {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/html", html))

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

/* ===== Console (dev) ===== */

type ConsoleMailer struct{}

func (ConsoleMailer) Send(ctx context.Context, to, subject, html string) error {
	log.Printf("[MAIL] to=%s subject=%q\n%s", to, subject, html)
	return nil
}

/* ===== Recorder (tests) ===== */

type Message struct {
	To, Subject, HTML string
}

// Recorder menyimpan pesan; Err != nil mensimulasikan kegagalan kirim.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (r *Recorder) Send(ctx context.Context, to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Messages = append(r.Messages, Message{To: to, Subject: subject, HTML: html})
	return nil
}

func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}
