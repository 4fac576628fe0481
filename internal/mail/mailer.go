// Package mail sends transactional e-mail over SMTP through a background
// dispatcher so request handlers never wait on the mail server.
package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Kyz7/storefront/internal/config"
	"github.com/pkg/errors"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers a single message.
type Sender interface {
	Send(msg Message) error
}

type Mailer struct {
	cfg config.MailConfig
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail: no recipients")
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	raw := m.buildRaw(msg)

	// Port 465 is implicit TLS, anything else negotiates STARTTLS.
	if m.cfg.Port == "465" {
		return m.sendTLS(addr, auth, msg.To, raw)
	}
	return errors.Wrap(smtp.SendMail(addr, auth, m.cfg.From, msg.To, raw), "mail: send")
}

func (m *Mailer) sendTLS(addr string, auth smtp.Auth, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return errors.Wrap(err, "mail: TLS dial")
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return errors.Wrap(err, "mail: client")
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "mail: auth")
		}
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (m *Mailer) buildRaw(msg Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	return buf.Bytes()
}
