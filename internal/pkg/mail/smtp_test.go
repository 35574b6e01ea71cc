package mail

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net"
	netmail "net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type received struct {
	from string
	to   []string
	data []byte
}

type testBackend struct {
	mu       sync.Mutex
	messages []received

	// tempFailures makes the next n RCPT commands answer 451.
	tempFailures *atomic.Int32
	rcptCalls    *atomic.Int32
}

func newTestBackend() *testBackend {
	return &testBackend{tempFailures: atomic.NewInt32(0), rcptCalls: atomic.NewInt32(0)}
}

func (b *testBackend) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &testSession{backend: b}, nil
}

func (b *testBackend) received() []received {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]received(nil), b.messages...)
}

type testSession struct {
	backend *testBackend
	from    string
	to      []string
}

func (s *testSession) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *testSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.backend.rcptCalls.Inc()
	if s.backend.tempFailures.Load() > 0 {
		s.backend.tempFailures.Dec()
		return &smtp.SMTPError{Code: 451, EnhancedCode: smtp.EnhancedCode{4, 3, 0}, Message: "try again later"}
	}
	if strings.HasPrefix(to, "reject") {
		return &smtp.SMTPError{Code: 550, EnhancedCode: smtp.EnhancedCode{5, 1, 1}, Message: "no such user"}
	}
	s.to = append(s.to, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, received{from: s.from, to: s.to, data: data})
	s.backend.mu.Unlock()
	return nil
}

func (s *testSession) Reset() {
	s.from = ""
	s.to = nil
}

func (s *testSession) Logout() error { return nil }

func startTestServer(t *testing.T, be *testBackend) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := smtp.NewServer(be)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true

	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return l.Addr().(*net.TCPAddr).Port
}

func newTestSMTP(t *testing.T, port int) *SMTP {
	t.Helper()

	s, err := NewSMTP(SMTPConfig{
		Host:    "127.0.0.1",
		Port:    port,
		From:    "Waitlist <noreply@example.com>",
		Crypto:  CryptoNone,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return s
}

func TestNewSMTP(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{Port: 465})
	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)

	_, err = NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 465, Crypto: "starttls"})
	assert.ErrorIs(t, err, ErrSMTPUnknownCrypto)

	s, err := NewSMTP(SMTPConfig{Host: "smtp.gmail.com", Port: 465, Username: "team@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, CryptoSSL, s.crypto)
	assert.Equal(t, "team@gmail.com", s.defaultFrom)
	assert.Equal(t, "smtp.gmail.com:465", s.addr)
}

func TestSMTP_Send(t *testing.T) {
	be := newTestBackend()
	s := newTestSMTP(t, startTestServer(t, be))

	err := s.Send(context.Background(), Message{
		To:       []string{"Ada <ada@example.com>"},
		Bcc:      []string{"ops@example.com"},
		Subject:  "Welcome to Student AI Helper Waitlist ✓",
		TextBody: "Hi Ada",
		HTMLBody: "<p>Hi <b>Ada</b></p>",
	})
	require.NoError(t, err)

	msgs := be.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, "noreply@example.com", msgs[0].from)
	assert.Equal(t, []string{"ada@example.com", "ops@example.com"}, msgs[0].to)

	parsed, err := netmail.ReadMessage(bytes.NewReader(msgs[0].data))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Student AI Helper Waitlist ✓", subject)
	assert.Equal(t, `"Ada" <ada@example.com>`, parsed.Header.Get("To"))
	assert.Empty(t, parsed.Header.Get("Bcc"))

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	parts := map[string]string{}
	mr := multipart.NewReader(parsed.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		parts[strings.SplitN(part.Header.Get("Content-Type"), ";", 2)[0]] = string(body)
	}
	assert.Equal(t, "Hi Ada", parts["text/plain"])
	assert.Equal(t, "<p>Hi <b>Ada</b></p>", parts["text/html"])
}

func TestSMTP_SendHTMLOnly(t *testing.T) {
	be := newTestBackend()
	s := newTestSMTP(t, startTestServer(t, be))

	require.NoError(t, s.Send(context.Background(), Message{
		To:       []string{"ada@example.com"},
		Subject:  "hello",
		HTMLBody: "<p>Field of study: Computer Science</p>",
	}))

	msgs := be.received()
	require.Len(t, msgs, 1)

	parsed, err := netmail.ReadMessage(bytes.NewReader(msgs[0].data))
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=UTF-8", parsed.Header.Get("Content-Type"))
	assert.Equal(t, "quoted-printable", parsed.Header.Get("Content-Transfer-Encoding"))
}

func TestSMTP_SendPermanentFailure(t *testing.T) {
	be := newTestBackend()
	m := WithRetry(newTestSMTP(t, startTestServer(t, be)), RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond})

	err := m.Send(context.Background(), Message{To: []string{"rejected@example.com"}, Subject: "x", TextBody: "x"})

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 550, smtpErr.Code)
	assert.EqualValues(t, 1, be.rcptCalls.Load())
	assert.Empty(t, be.received())
}

func TestSMTP_SendRetriesTransientFailure(t *testing.T) {
	be := newTestBackend()
	be.tempFailures.Store(2)
	m := WithRetry(newTestSMTP(t, startTestServer(t, be)), RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond})

	err := m.Send(context.Background(), Message{To: []string{"ada@example.com"}, Subject: "x", TextBody: "x"})
	require.NoError(t, err)

	assert.EqualValues(t, 3, be.rcptCalls.Load())
	assert.Len(t, be.received(), 1)
}

func TestSMTP_SendCanceledContext(t *testing.T) {
	s := newTestSMTP(t, startTestServer(t, newTestBackend()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, Message{To: []string{"ada@example.com"}, Subject: "x", TextBody: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSMTP_SendInvalidRecipientNeverDials(t *testing.T) {
	s := newTestSMTP(t, 1)

	err := s.Send(context.Background(), Message{To: []string{"ada@example.com\nBcc: x@example.com"}, Subject: "x"})
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
