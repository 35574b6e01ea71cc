package mail

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Crypto modes for the SMTP connection.
const (
	// CryptoSSL opens the connection with implicit TLS (usually port 465).
	CryptoSSL = "ssl"
	// CryptoTLS upgrades a plain connection with STARTTLS (usually port 587).
	CryptoTLS = "tls"
	// CryptoNone talks plain SMTP. Only meant for local relays and tests.
	CryptoNone = "none"
)

const defaultSMTPTimeout = 30 * time.Second

var (
	// ErrSMTPHostPortRequired is returned when Host/Port are missing.
	ErrSMTPHostPortRequired = errors.New("mail: smtp host and port are required")
	// ErrSMTPUnknownCrypto is returned when Crypto is not one of ssl, tls or none.
	ErrSMTPUnknownCrypto = errors.New("mail: unknown smtp crypto mode")
)

// SMTP is a Mail implementation backed by github.com/emersion/go-smtp.
//
// Each Send opens its own connection, so a single SMTP value is safe for
// concurrent use.
type SMTP struct {
	addr        string
	crypto      string
	defaultFrom string
	username    string
	password    string
	timeout     time.Duration
	tlsConfig   *tls.Config
}

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port.
	Port int
	// Username is the SMTP authentication username.
	Username string
	// Password is the SMTP authentication password.
	Password string
	// From is the default sender when Message.From is empty. Falls back to Username.
	From string
	// Crypto is one of CryptoSSL, CryptoTLS or CryptoNone. Empty means CryptoSSL.
	Crypto string
	// Timeout bounds a whole Send. Zero means 30s.
	Timeout time.Duration
	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	crypto := strings.ToLower(strings.TrimSpace(cfg.Crypto))
	switch crypto {
	case "":
		crypto = CryptoSSL
	case CryptoSSL, CryptoTLS, CryptoNone:
	default:
		return nil, fmt.Errorf("%w: %q", ErrSMTPUnknownCrypto, cfg.Crypto)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	return &SMTP{
		addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		crypto:      crypto,
		defaultFrom: from,
		username:    cfg.Username,
		password:    cfg.Password,
		timeout:     timeout,
		tlsConfig: &tls.Config{
			ServerName:         cfg.Host,
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed relays
		},
	}, nil
}

// Send delivers a message over SMTP.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env, err := msg.envelope(s.defaultFrom)
	if err != nil {
		return err
	}

	raw, err := buildRaw(env, msg, time.Now())
	if err != nil {
		return err
	}

	client, release, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer release()
	defer client.Close()

	if s.username != "" && s.password != "" {
		if err := client.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.SendMail(env.from.Address, env.recipients, bytes.NewReader(raw)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("smtp send: %w", err)
	}

	// The server already accepted the message at this point.
	if err := client.Quit(); err != nil {
		slog.WarnContext(ctx, "smtp quit failed", "addr", s.addr, "error", err)
	}

	return nil
}

// Close implements io.Closer for interface compatibility.
func (s *SMTP) Close() error {
	return nil
}

// dial connects and returns a client bounded by the send budget. release must
// be called once the client is done.
func (s *SMTP) dial(ctx context.Context) (*smtp.Client, func() bool, error) {
	budget := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < budget {
			budget = remaining
		}
	}

	dialer := &net.Dialer{Timeout: budget}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, nil, fmt.Errorf("smtp dial %s: %w", s.addr, err)
	}

	// go-smtp does not take a context, closing the socket unblocks it.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	if err := conn.SetDeadline(time.Now().Add(budget)); err != nil {
		stop()
		_ = conn.Close()
		return nil, nil, err
	}

	var client *smtp.Client
	switch s.crypto {
	case CryptoSSL:
		client = smtp.NewClient(tls.Client(conn, s.tlsConfig))
	case CryptoTLS:
		client, err = smtp.NewClientStartTLS(conn, s.tlsConfig)
		if err != nil {
			stop()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("smtp starttls: %w", err)
		}
	default:
		client = smtp.NewClient(conn)
	}

	client.CommandTimeout = budget
	client.SubmissionTimeout = budget

	return client, stop, nil
}

func buildRaw(env *envelope, msg Message, now time.Time) ([]byte, error) {
	body, contentType, err := buildBody(msg)
	if err != nil {
		return nil, err
	}

	var headers []string
	headers = append(headers, fmt.Sprintf("From: %s", env.from.String()))
	if len(env.to) > 0 {
		headers = append(headers, fmt.Sprintf("To: %s", joinAddresses(env.to)))
	}
	if len(env.cc) > 0 {
		headers = append(headers, fmt.Sprintf("Cc: %s", joinAddresses(env.cc)))
	}
	headers = append(headers, fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", msg.Subject)))
	headers = append(headers, fmt.Sprintf("Date: %s", now.Format(time.RFC1123Z)))
	headers = append(headers, "MIME-Version: 1.0")
	headers = append(headers, fmt.Sprintf("Content-Type: %s", contentType))
	if !strings.HasPrefix(contentType, "multipart/") {
		headers = append(headers, "Content-Transfer-Encoding: quoted-printable")
	}

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body), nil
}

func buildBody(msg Message) (body string, contentType string, err error) {
	if msg.HTMLBody != "" && msg.TextBody != "" {
		text, err := encodeQP(msg.TextBody)
		if err != nil {
			return "", "", err
		}
		html, err := encodeQP(msg.HTMLBody)
		if err != nil {
			return "", "", err
		}

		boundary := multipartBoundary()
		var sb strings.Builder
		sb.WriteString("This is a multipart message in MIME format.\r\n")
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		sb.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(text)
		sb.WriteString("\r\n")
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		sb.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(html)
		sb.WriteString("\r\n")
		fmt.Fprintf(&sb, "--%s--", boundary)
		return sb.String(), fmt.Sprintf("multipart/alternative; boundary=%s", boundary), nil
	}

	if msg.HTMLBody != "" {
		html, err := encodeQP(msg.HTMLBody)
		return html, "text/html; charset=UTF-8", err
	}

	text, err := encodeQP(msg.TextBody)
	return text, "text/plain; charset=UTF-8", err
}

func encodeQP(s string) (string, error) {
	var buf bytes.Buffer
	w := quotedprintable.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func joinAddresses(addrs []*netmail.Address) string {
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, addr.String())
	}
	return strings.Join(out, ", ")
}

func multipartBoundary() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "waitlist-boundary-fallback"
	}
	return "waitlist-boundary-" + hex.EncodeToString(b[:])
}
