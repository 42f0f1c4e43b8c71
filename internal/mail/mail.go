// Package mail delivers composed payroll reports.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/diewo77/brushwork/internal/config"
	"github.com/diewo77/brushwork/internal/report"
)

var ErrNoRecipients = errors.New("no recipients")

// Mailer sends an HTML message to a list of recipients.
type Mailer interface {
	Send(ctx context.Context, to []string, msg report.Message) error
}

// New picks the SMTP mailer when a host is configured and the log mailer otherwise.
func New(cfg config.SMTPConfig, log *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return &LogMailer{Log: log}
	}
	return NewSMTP(cfg)
}

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// sendTimeout bounds one delivery when ctx carries no deadline.
const sendTimeout = 30 * time.Second

// SMTP sends through a plain net/smtp relay. Sends wait on a token bucket so a
// burst of reports does not trip the relay's rate limits.
type SMTP struct {
	addr    string
	host    string
	from    string
	auth    smtp.Auth
	limiter *rate.Limiter
	send    sendFunc
}

func NewSMTP(cfg config.SMTPConfig) *SMTP {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	s := &SMTP{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		host:    cfg.Host,
		from:    cfg.From,
		limiter: rate.NewLimiter(rate.Limit(perMinute/60), 1),
	}
	s.send = s.deliver
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

func (s *SMTP) Send(ctx context.Context, to []string, msg report.Message) error {
	to = cleanRecipients(to)
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail throttle: %w", err)
	}
	raw := buildMessage(s.from, to, msg, time.Now())
	if err := s.send(ctx, s.addr, s.auth, s.from, to, raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// deliver runs one SMTP session bound to ctx: the connection deadline follows
// ctx and cancelling ctx closes the connection.
func (s *SMTP) deliver(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sendTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	Log *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, to []string, msg report.Message) error {
	to = cleanRecipients(to)
	if len(to) == 0 {
		return ErrNoRecipients
	}
	log := m.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("mail not sent, no smtp host configured",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
	return nil
}

func cleanRecipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func buildMessage(from string, to []string, msg report.Message, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.Bytes()
}
