// Package mailer delivers password reset links.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/logging"
	"gopkg.in/gomail.v2"
)

const resetSubject = "Reset your RentFinder password"

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

type SMTPMailer struct {
	from     string
	validity time.Duration
	send     func(m ...*gomail.Message) error
}

// NewSMTPMailer sends through host:port. validity is the reset token
// lifetime quoted in the email.
func NewSMTPMailer(host string, port int, user, password, from string, validity time.Duration) *SMTPMailer {
	d := gomail.NewDialer(host, port, user, password)
	d.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	return &SMTPMailer{from: from, validity: validity, send: d.DialAndSend}
}

func resetBody(link string, validity time.Duration) (text, html string) {
	within := formatValidity(validity)
	text = "Someone asked to reset the password of your RentFinder account.\n\n" +
		"Open this link within " + within + " to choose a new password:\n" + link + "\n\n" +
		"If it was not you, ignore this email."
	html = `<p>Someone asked to reset the password of your RentFinder account.</p>` +
		`<p><a href="` + link + `">Choose a new password</a> (valid for ` + within + `).</p>` +
		`<p>If it was not you, ignore this email.</p>`
	return text, html
}

// formatValidity renders d in whole hours when it divides evenly, otherwise
// in minutes.
func formatValidity(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	m := int(d / time.Minute)
	if m < 1 {
		m = 1
	}
	return plural(m, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text, html := resetBody(link, m.validity)
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", resetSubject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// LogMailer writes reset links to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log.With("module", "mailer")}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.log.Info(ctx, "password reset link", "to", to, "link", link)
	return nil
}
