package services

import (
	"context"
	"fmt"
	"mime/quotedprintable"
	"net/smtp"
	"os"
	"strings"

	"go.uber.org/zap"
)

// EmailSender is the outbound-mail capability. Callers decide whether a send
// failure is fatal; for confirmation mail it never is.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPSender delivers through a plain SMTP relay, configured from the
// SMTP_HOST/SMTP_PORT/SMTP_USER/SMTP_PASS/SMTP_FROM_* environment.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	FromAddr string
}

// SMTPFromEnv builds an SMTPSender from the environment, or nil when no host
// is configured (main falls back to the log sender).
func SMTPFromEnv() *SMTPSender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	s := &SMTPSender{
		Host:     host,
		Port:     getEnv("SMTP_PORT", "587"),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		FromName: getEnv("SMTP_FROM_NAME", "Little Gems School Admissions"),
		FromAddr: os.Getenv("SMTP_FROM_EMAIL"),
	}
	if s.FromAddr == "" {
		s.FromAddr = s.Username
	}
	return s
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (s *SMTPSender) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	msg, err := buildMessage(s.FromName, s.FromAddr, to, subject, htmlBody, textBody)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.FromAddr, []string{to}, msg)
}

// buildMessage assembles a multipart/alternative message with text and HTML
// parts, both quoted-printable encoded.
func buildMessage(fromName, fromAddr, to, subject, htmlBody, textBody string) ([]byte, error) {
	const boundary = "==admissions-boundary=="

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, fromAddr)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=UTF-8", textBody},
		{"text/html; charset=UTF-8", htmlBody},
	} {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", part.ctype)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String()), nil
}

// LogSender only logs the send; used in development and tests where no SMTP
// relay is available.
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, _, textBody string) error {
	s.Log.Info("email (not sent, no SMTP configured)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("text_bytes", len(textBody)))
	return nil
}
